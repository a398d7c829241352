package pipeline

import (
	"context"
	"fmt"

	"committee-trade-bot-go/internal/reasoning"
	"go.uber.org/zap"
)

// ProposerStage is the first deliberation role. It reads the enriched market
// context plus the current portfolio position and proposes a trade direction.
// It requires no upstream deliberation fields and is allowed to be wrong:
// correction happens in the arbiter, not here.
type ProposerStage struct {
	portfolio PortfolioReader
	engine    reasoning.Engine
	logger    *zap.Logger
}

func NewProposerStage(portfolio PortfolioReader, engine reasoning.Engine, logger *zap.Logger) *ProposerStage {
	return &ProposerStage{portfolio: portfolio, engine: engine, logger: logger}
}

func (s *ProposerStage) Name() string { return "proposer" }

func (s *ProposerStage) Run(ctx context.Context, rc *Context) {
	pos, err := loadPositionContext(s.portfolio, rc.PrimarySymbol())
	if err != nil {
		s.logger.Error("Failed to load position context", zap.Error(err))
		rc.SetError("error querying position: %v", err)
		return
	}

	userPrompt := fmt.Sprintf(
		"Analyze the following market context and propose a trade:\n\n%s\n\nRemember: you are optimistic and look for opportunities.",
		formatMarketContext(rc, pos),
	)

	var proposal Proposal
	err = s.engine.Execute(ctx, reasoning.Request{
		AgentName:    s.Name(),
		SystemPrompt: proposerSystemPrompt,
		UserPrompt:   userPrompt,
		Schema:       proposalSchema,
	}, &proposal)
	if err != nil {
		s.logger.Error("Proposer failed", zap.Error(err))
		rc.SetError("error in proposer: %v", err)
		return
	}

	rc.Proposal = &proposal
	rc.ClearError()

	s.logger.Info("Proposal ready",
		zap.String("direction", proposal.Direction),
		zap.String("confidence", proposal.Confidence),
	)
}
