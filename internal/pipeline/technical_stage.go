package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"committee-trade-bot-go/internal/marketdata"
	"committee-trade-bot-go/internal/reasoning"
	"go.uber.org/zap"
)

const (
	smaShortWindow = 25
	smaLongWindow  = 200
	smaSeriesLen   = 10
)

// TechnicalStage fetches the SMA 25 and SMA 200 series and asks the
// reasoning engine for trend, crossover state, momentum and a conclusion.
// Requires only the input symbol.
type TechnicalStage struct {
	indicators marketdata.IndicatorSource
	engine     reasoning.Engine
	logger     *zap.Logger
}

func NewTechnicalStage(indicators marketdata.IndicatorSource, engine reasoning.Engine, logger *zap.Logger) *TechnicalStage {
	return &TechnicalStage{indicators: indicators, engine: engine, logger: logger}
}

func (s *TechnicalStage) Name() string { return "technical_analysis" }

type technicalAnalysis struct {
	TrendAnalysis   string `json:"trend_analysis"`
	CrossoverStatus string `json:"crossover_status"`
	Momentum        string `json:"momentum"`
	Conclusion      string `json:"conclusion"`
}

func (s *TechnicalStage) Run(ctx context.Context, rc *Context) {
	symbol := rc.PrimarySymbol()

	smaShort, err := s.indicators.SMA(ctx, symbol, smaShortWindow, smaSeriesLen)
	if err != nil {
		s.logger.Error("Failed to fetch short SMA", zap.Error(err))
		rc.SetError("error fetching SMA %d: %v", smaShortWindow, err)
		return
	}
	smaLong, err := s.indicators.SMA(ctx, symbol, smaLongWindow, smaSeriesLen)
	if err != nil {
		s.logger.Error("Failed to fetch long SMA", zap.Error(err))
		rc.SetError("error fetching SMA %d: %v", smaLongWindow, err)
		return
	}
	if len(smaShort) == 0 || len(smaLong) == 0 {
		rc.SetError("not enough SMA data for %s", symbol)
		return
	}

	userPrompt := fmt.Sprintf("Moving averages for %s:\n\n%s\n\nAnalyze and return JSON.",
		symbol, formatSMASeries(smaShort, smaLong))

	var analysis technicalAnalysis
	err = s.engine.Execute(ctx, reasoning.Request{
		AgentName:    s.Name(),
		SystemPrompt: technicalSystemPrompt,
		UserPrompt:   userPrompt,
		Schema:       technicalAnalysisSchema,
	}, &analysis)
	if err != nil {
		s.logger.Error("Technical analysis failed", zap.Error(err))
		rc.SetError("error in technical analysis: %v", err)
		return
	}

	rc.Trend = strPtr(analysis.TrendAnalysis)
	rc.Crossover = strPtr(analysis.CrossoverStatus)
	rc.Momentum = strPtr(analysis.Momentum)
	rc.TechnicalConclusion = strPtr(analysis.Conclusion)
	rc.ClearError()

	s.logger.Info("Technical analysis ready",
		zap.String("crossover", analysis.CrossoverStatus),
		zap.String("momentum", analysis.Momentum),
	)
}

func formatSMASeries(short, long []marketdata.SMAValue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SMA %d (latest %d values):\n", smaShortWindow, len(short))
	for _, v := range short {
		fmt.Fprintf(&b, "  %s: $%.2f\n", time.UnixMilli(v.Timestamp).UTC().Format("2006-01-02"), v.Value)
	}
	fmt.Fprintf(&b, "\nSMA %d (latest %d values):\n", smaLongWindow, len(long))
	for _, v := range long {
		fmt.Fprintf(&b, "  %s: $%.2f\n", time.UnixMilli(v.Timestamp).UTC().Format("2006-01-02"), v.Value)
	}
	return b.String()
}
