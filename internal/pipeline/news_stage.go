package pipeline

import (
	"context"
	"fmt"
	"strings"

	"committee-trade-bot-go/internal/marketdata"
	"committee-trade-bot-go/internal/reasoning"
	"go.uber.org/zap"
)

// NewsStage fetches recent headlines and asks the reasoning engine for a
// summary, a market opinion and an overall sentiment classification.
// Requires nothing from earlier stages.
type NewsStage struct {
	news   marketdata.NewsSource
	engine reasoning.Engine
	logger *zap.Logger
}

func NewNewsStage(news marketdata.NewsSource, engine reasoning.Engine, logger *zap.Logger) *NewsStage {
	return &NewsStage{news: news, engine: engine, logger: logger}
}

func (s *NewsStage) Name() string { return "news_sentiment" }

type newsAnalysis struct {
	ContextSummary string `json:"context_summary"`
	MarketOpinion  string `json:"market_opinion"`
	Sentiment      string `json:"sentiment"`
}

func (s *NewsStage) Run(ctx context.Context, rc *Context) {
	headlines, err := s.news.LatestHeadlines(ctx, rc.Symbols, rc.NewsLimit)
	if err != nil {
		s.logger.Error("Failed to fetch headlines", zap.Error(err))
		rc.SetError("error fetching news: %v", err)
		return
	}

	formatted := "(no news)"
	if len(headlines) > 0 {
		formatted = "- " + strings.Join(headlines, "\n- ")
	}
	userPrompt := fmt.Sprintf("Recent headlines (%d items):\n%s\n\nAnalyze and return JSON.", len(headlines), formatted)

	var analysis newsAnalysis
	err = s.engine.Execute(ctx, reasoning.Request{
		AgentName:    s.Name(),
		SystemPrompt: newsSystemPrompt,
		UserPrompt:   userPrompt,
		Schema:       newsAnalysisSchema,
	}, &analysis)
	if err != nil {
		s.logger.Error("News analysis failed", zap.Error(err))
		rc.SetError("error in news analysis: %v", err)
		return
	}

	rc.NewsSummary = strPtr(analysis.ContextSummary)
	rc.NewsOpinion = strPtr(analysis.MarketOpinion)
	rc.NewsSentiment = strPtr(analysis.Sentiment)
	rc.ClearError()

	s.logger.Info("News sentiment ready",
		zap.String("sentiment", analysis.Sentiment),
		zap.Int("headlines", len(headlines)),
	)
}
