package pipeline

import (
	"context"
	"fmt"

	"committee-trade-bot-go/internal/reasoning"
	"go.uber.org/zap"
)

// CriticStage is the second deliberation role. It requires the proposer's
// direction; when that is absent it records the error and leaves the context
// otherwise untouched. It re-queries the portfolio position independently
// rather than trusting the proposer's view of it.
type CriticStage struct {
	portfolio PortfolioReader
	engine    reasoning.Engine
	logger    *zap.Logger
}

func NewCriticStage(portfolio PortfolioReader, engine reasoning.Engine, logger *zap.Logger) *CriticStage {
	return &CriticStage{portfolio: portfolio, engine: engine, logger: logger}
}

func (s *CriticStage) Name() string { return "critic" }

func (s *CriticStage) Run(ctx context.Context, rc *Context) {
	if rc.Proposal == nil || rc.Proposal.Direction == "" {
		rc.SetError("no proposal available to critique")
		return
	}

	pos, err := loadPositionContext(s.portfolio, rc.PrimarySymbol())
	if err != nil {
		s.logger.Error("Failed to load position context", zap.Error(err))
		rc.SetError("error querying position: %v", err)
		return
	}

	userPrompt := fmt.Sprintf(
		"Tear apart the following proposal:\n\nPROPOSAL: %s\nJustification: %s\n\n%s",
		rc.Proposal.Direction,
		rc.Proposal.Justification,
		formatMarketContext(rc, pos),
	)

	var critique Critique
	err = s.engine.Execute(ctx, reasoning.Request{
		AgentName:    s.Name(),
		SystemPrompt: criticSystemPrompt,
		UserPrompt:   userPrompt,
		Schema:       critiqueSchema,
	}, &critique)
	if err != nil {
		s.logger.Error("Critic failed", zap.Error(err))
		rc.SetError("error in critic: %v", err)
		return
	}

	rc.Critique = &critique
	rc.ClearError()

	s.logger.Info("Critique ready",
		zap.String("assessment", critique.OverallAssessment),
		zap.Int("risks", len(critique.IdentifiedRisks)),
	)
}
