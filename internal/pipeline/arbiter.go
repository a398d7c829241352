package pipeline

import (
	"context"
	"fmt"

	"committee-trade-bot-go/internal/reasoning"
	"go.uber.org/zap"
)

// ArbiterStage is the final deliberation role. It requires both the
// proposer's direction and the critic's assessment, weighs the debate, and
// produces the final decision. Whatever the reasoning engine decides, the
// position guard below is applied afterwards: it is the structural safety
// net and does not depend on the engine's stated rationale.
type ArbiterStage struct {
	portfolio PortfolioReader
	engine    reasoning.Engine
	logger    *zap.Logger
}

func NewArbiterStage(portfolio PortfolioReader, engine reasoning.Engine, logger *zap.Logger) *ArbiterStage {
	return &ArbiterStage{portfolio: portfolio, engine: engine, logger: logger}
}

func (s *ArbiterStage) Name() string { return "arbiter" }

func (s *ArbiterStage) Run(ctx context.Context, rc *Context) {
	if rc.Proposal == nil || rc.Proposal.Direction == "" {
		rc.SetError("no proposal available to arbitrate")
		return
	}
	if rc.Critique == nil || rc.Critique.OverallAssessment == "" {
		rc.SetError("no critique available to arbitrate")
		return
	}

	symbol := rc.PrimarySymbol()
	pos, err := loadPositionContext(s.portfolio, symbol)
	if err != nil {
		s.logger.Error("Failed to load position context", zap.Error(err))
		rc.SetError("error querying position: %v", err)
		return
	}

	userPrompt := fmt.Sprintf(
		"As the impartial Arbiter, evaluate this case and make the final call:\n\n%s\n%s\nDecide: BUY, SELL or HOLD. The current position is a critical factor.",
		formatPositionContext(pos, symbol),
		formatDebate(rc),
	)

	var decision Decision
	err = s.engine.Execute(ctx, reasoning.Request{
		AgentName:    s.Name(),
		SystemPrompt: arbiterSystemPrompt,
		UserPrompt:   userPrompt,
		Schema:       decisionSchema,
	}, &decision)
	if err != nil {
		s.logger.Error("Arbiter failed", zap.Error(err))
		rc.SetError("error in arbiter: %v", err)
		return
	}

	if applyPositionGuard(&decision, pos.Quantity) {
		s.logger.Warn("Decision overridden by position guard",
			zap.String("symbol", symbol),
			zap.Float64("position", pos.Quantity),
			zap.String("final_decision", decision.FinalDecision),
		)
	}

	rc.Decision = &decision
	rc.ClearError()

	s.logger.Info("Final decision ready",
		zap.String("decision", decision.FinalDecision),
		zap.String("risk", decision.RiskAssessment),
		zap.String("confidence", decision.Confidence),
	)
}

// applyPositionGuard coerces decisions that contradict the current position.
// A buy on top of an open position and a sell with nothing to close both
// become hold, with an explicit override note appended to the reasoning.
// Reports whether the decision was changed.
func applyPositionGuard(d *Decision, position float64) bool {
	switch {
	case d.FinalDecision == "buy" && position > 0:
		d.FinalDecision = "hold"
		d.Reasoning = "[ADJUSTED FOR SAFETY] " + d.Reasoning +
			"\n\nNOTE: the original decision was BUY, but a position is already open; overridden to HOLD to prevent over-exposure."
		return true
	case d.FinalDecision == "sell" && position <= 0:
		d.FinalDecision = "hold"
		d.Reasoning = "[ADJUSTED FOR SAFETY] " + d.Reasoning +
			"\n\nNOTE: the original decision was SELL, but no position exists to close; overridden to HOLD."
		return true
	}
	return false
}
