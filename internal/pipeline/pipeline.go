package pipeline

import (
	"context"

	"committee-trade-bot-go/internal/marketdata"
	"committee-trade-bot-go/internal/reasoning"
	"go.uber.org/zap"
)

// Deps are the external handles the pipeline stages need. They are created
// once at process start and passed in explicitly.
type Deps struct {
	News       marketdata.NewsSource
	Prices     marketdata.PriceSource
	Indicators marketdata.IndicatorSource
	Sentiment  marketdata.SentimentSource
	Zones      ZoneReader
	Portfolio  PortfolioReader
	Engine     reasoning.Engine
	Logger     *zap.Logger
}

// Pipeline sequences the seven stages over one shared run context. Within a
// run the stages execute strictly sequentially so no two stages ever race on
// the context. The orchestrator does not inspect the error slot between
// stages: every stage independently guards its own prerequisites and a later
// success overwrites an earlier failure. Across runs there is no mutual
// exclusion; only the ledger serializes its own mutations.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger
}

// New builds the pipeline in its fixed order: news, technical analysis,
// sentiment index, support/resistance, then proposer, critic, arbiter.
func New(deps Deps) *Pipeline {
	log := deps.Logger
	return &Pipeline{
		logger: log,
		stages: []Stage{
			NewNewsStage(deps.News, deps.Engine, log),
			NewTechnicalStage(deps.Indicators, deps.Engine, log),
			NewSentimentStage(deps.Sentiment, log),
			NewZoneStage(deps.Prices, deps.Zones, log),
			NewProposerStage(deps.Portfolio, deps.Engine, log),
			NewCriticStage(deps.Portfolio, deps.Engine, log),
			NewArbiterStage(deps.Portfolio, deps.Engine, log),
		},
	}
}

// Run executes one full pipeline pass over a fresh context and returns it.
// The context reports success when its error slot is empty at the end.
func (p *Pipeline) Run(ctx context.Context, symbols []string, newsLimit int) *Context {
	rc := NewContext(symbols, newsLimit)

	p.logger.Info("Starting pipeline run",
		zap.Strings("symbols", rc.Symbols),
		zap.Int("news_limit", rc.NewsLimit),
	)

	for _, stage := range p.stages {
		p.logger.Debug("Running stage", zap.String("stage", stage.Name()))
		stage.Run(ctx, rc)
	}

	if rc.Succeeded() {
		p.logger.Info("Pipeline run completed")
	} else {
		p.logger.Error("Pipeline run finished with error", zap.String("error", rc.ErrorMessage))
	}
	return rc
}
