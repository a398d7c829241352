// Package pipeline runs the fixed-order decision pipeline: four market
// context stages followed by the three-role deliberation (proposer, critic,
// arbiter), all mutating one shared run context.
package pipeline

import "fmt"

// DefaultSymbol is analyzed when a run is started without symbols.
const DefaultSymbol = "BTCUSD"

// Proposal is the proposer's structured artifact.
type Proposal struct {
	Direction     string   `json:"direction"` // "buy" | "sell" | "hold"
	Justification string   `json:"justification"`
	KeyFactors    []string `json:"key_factors"`
	Confidence    string   `json:"confidence_level"` // "high" | "medium" | "low"
}

// Critique is the critic's structured artifact.
type Critique struct {
	OverallAssessment     string   `json:"overall_assessment"` // "reject" | "proceed_with_caution" | "acceptable"
	MainCritique          string   `json:"main_critique"`
	IdentifiedRisks       []string `json:"identified_risks"` // 3-7, enforced by schema
	Contradictions        []string `json:"contradictions"`
	MissingConsiderations []string `json:"missing_considerations"`
	Recommendation        string   `json:"recommendation"`
}

// Decision is the arbiter's final artifact, after the position guard.
type Decision struct {
	FinalDecision          string   `json:"final_decision"` // "buy" | "sell" | "hold"
	Reasoning              string   `json:"reasoning"`
	ProposerPointsAccepted []string `json:"proposer_points_accepted"`
	CriticPointsAccepted   []string `json:"critic_points_accepted"`
	KeyFactors             []string `json:"key_factors_for_decision"`
	RiskAssessment         string   `json:"risk_assessment"`  // "low" | "medium" | "high"
	Confidence             string   `json:"confidence_level"` // "high" | "medium" | "low"
}

// Context is the single mutable record shared by all stages of one run.
// Optional fields are pointers and stay nil until a stage writes them; once
// written they are never cleared. The one exception is ErrorMessage: any
// stage may set it and any later successful stage clears it again
// (last-writer-wins), so at the end of a run it holds the most recent
// failure, if any. A Context is created fresh per run and never shared
// across runs.
type Context struct {
	// Input
	Symbols   []string
	NewsLimit int

	// News sentiment
	NewsSummary   *string
	NewsOpinion   *string
	NewsSentiment *string // "positive" | "negative" | "mixed" | "neutral"

	// Technical analysis (SMA 25/200)
	Trend               *string
	Crossover           *string // "golden_cross" | "death_cross" | "neutral" | "approaching"
	Momentum            *string // "bullish" | "bearish" | "sideways"
	TechnicalConclusion *string

	// Market sentiment index
	SentimentIndex          *int
	SentimentClassification *string

	// Price and zones
	CurrentPrice         *float64
	NearestSupport       *float64
	DistanceToSupport    *string // signed percentage, e.g. "-1.50%"
	NearestResistance    *float64
	DistanceToResistance *string // signed percentage, e.g. "+2.08%"

	// Deliberation
	Proposal *Proposal
	Critique *Critique
	Decision *Decision

	// Error slot; empty means no error recorded.
	ErrorMessage string
}

// NewContext creates the run context, applying input defaults.
func NewContext(symbols []string, newsLimit int) *Context {
	if len(symbols) == 0 {
		symbols = []string{DefaultSymbol}
	}
	if newsLimit <= 0 {
		newsLimit = 10
	}
	return &Context{Symbols: symbols, NewsLimit: newsLimit}
}

// PrimarySymbol is the symbol the deliberation roles reason about.
func (c *Context) PrimarySymbol() string {
	if len(c.Symbols) == 0 {
		return DefaultSymbol
	}
	return c.Symbols[0]
}

// SetError records a failure into the error slot.
func (c *Context) SetError(format string, args ...any) {
	c.ErrorMessage = fmt.Sprintf(format, args...)
}

// ClearError empties the error slot. Called by every stage that completes
// successfully, which gives the slot its last-writer-wins behavior.
func (c *Context) ClearError() {
	c.ErrorMessage = ""
}

// Succeeded reports whether the run ended without a recorded error.
func (c *Context) Succeeded() bool {
	return c.ErrorMessage == ""
}

func strPtr(s string) *string    { return &s }
func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }
