package pipeline

import (
	"context"

	"committee-trade-bot-go/internal/marketdata"
	"go.uber.org/zap"
)

// SentimentStage records the latest market sentiment index. Requires nothing
// from earlier stages and does no further processing.
type SentimentStage struct {
	source marketdata.SentimentSource
	logger *zap.Logger
}

func NewSentimentStage(source marketdata.SentimentSource, logger *zap.Logger) *SentimentStage {
	return &SentimentStage{source: source, logger: logger}
}

func (s *SentimentStage) Name() string { return "sentiment_index" }

func (s *SentimentStage) Run(ctx context.Context, rc *Context) {
	index, err := s.source.Latest(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch sentiment index", zap.Error(err))
		rc.SetError("error fetching sentiment index: %v", err)
		return
	}

	rc.SentimentIndex = intPtr(index.Value)
	rc.SentimentClassification = strPtr(index.Classification)
	rc.ClearError()

	s.logger.Info("Sentiment index ready",
		zap.Int("value", index.Value),
		zap.String("classification", index.Classification),
	)
}
