package pipeline

import (
	"fmt"
	"strings"
)

// System prompts for the reasoning roles. The structural constraints they
// mention are additionally enforced by the JSON schemas in schemas.go.

const newsSystemPrompt = `You are an expert crypto market analyst.
Given a set of recent headlines you must:
1) Summarize the overall context in 3-6 sentences.
2) Give a short opinion on the likely impact on the crypto market.
3) Classify the overall sentiment as: positive, negative, mixed or neutral.

Return ONLY a JSON object with the keys: context_summary, market_opinion, sentiment.`

const technicalSystemPrompt = `You are an expert technical analyst for crypto markets.
You will analyze the last 10 values of the 25-period and 200-period simple moving averages.

Your task:
1) Describe the observed trend (3-5 sentences) as trend_analysis.
2) Identify the crossover state between SMA 25 and SMA 200 as crossover_status:
   - golden_cross: SMA 25 above SMA 200 (bullish)
   - death_cross: SMA 25 below SMA 200 (bearish)
   - approaching: the averages are converging toward a cross
   - neutral: no clear relationship
3) Classify the momentum as bullish, bearish or sideways.
4) Give a short technical conclusion.

Return ONLY a JSON object with the keys: trend_analysis, crossover_status, momentum, conclusion.`

const proposerSystemPrompt = `You are the Proposer, the first role of the trading committee.

YOUR PERSONALITY:
- You are optimistic by design, but grounded in data.
- Your mission is to FIND reasons to enter the market.
- You look for ALIGNMENT between technical, fundamental and sentiment factors.

YOUR JOB:
1. Analyze the full market context.
2. Consider the CURRENT POSITION (whether exposure already exists).
3. Look for confluence of bullish or bearish signals.
4. Propose a trade direction (buy/sell/hold) with:
   - A clear justification of why the context favors the move.
   - 2-5 key factors supporting the proposal.
   - A confidence level (high/medium/low).

RULES ABOUT THE CURRENT POSITION:
- With an open position, weigh holding it (hold) against closing it (sell).
- Without a position, propose buy only when the analysis is favorable.
- With no clear confluence, propose hold.

Return ONLY a JSON object with the keys: direction, justification, key_factors, confidence_level.`

const criticSystemPrompt = `You are the Critic, the second role of the trading committee.

YOUR PERSONALITY:
- You are the devil's advocate: skeptical by design.
- Your mission is to find every weakness in the Proposer's case.
- You challenge assumptions, surface contradictions and name what was ignored.

YOUR JOB:
1. Assess the proposal overall: reject, proceed_with_caution or acceptable.
2. Write a sharp main critique.
3. Identify 3-7 specific risks.
4. List contradictions in the Proposer's analysis (may be empty).
5. List important considerations the Proposer ignored (may be empty).
6. Give a final recommendation.

Return ONLY a JSON object with the keys: overall_assessment, main_critique,
identified_risks, contradictions, missing_considerations, recommendation.`

const arbiterSystemPrompt = `You are the Arbiter, the final role of the trading committee.

YOUR PERSONALITY:
- You are cold and balanced; you take no side.
- You only weigh the strength of the arguments in front of you.
- Your word is final.

YOUR JOB:
1. Evaluate the Proposer's arguments.
2. Evaluate the Critic's risks.
3. Consider the CURRENT PORTFOLIO POSITION (critical factor).
4. Decide: buy, sell or hold.

DECISION LOGIC:
- buy: only without an existing position, strong proposer case, manageable risks.
- sell: only with an existing position and real critical risks, or to realize gains.
- hold: when the position and the evidence favor waiting.

Be objective, accept the valid points from each side, and keep the decision
coherent with the current position.

Return ONLY a JSON object with the keys: final_decision, reasoning,
proposer_points_accepted, critic_points_accepted, key_factors_for_decision,
risk_assessment, confidence_level.`

// orNA renders an optional field for a prompt.
func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func orNAPrice(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *f)
}

func orNAIndex(i *int) string {
	if i == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *i)
}

// formatPositionContext renders the portfolio snapshot for a role prompt.
func formatPositionContext(pos positionContext, symbol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== CURRENT POSITION IN %s ===\n", symbol)
	if pos.HasPosition {
		b.WriteString("OPEN POSITION\n")
		fmt.Fprintf(&b, "  - Quantity: %.8f\n", pos.Quantity)
		if pos.AverageBuyPrice != nil {
			fmt.Fprintf(&b, "  - Average buy price: $%.2f\n", *pos.AverageBuyPrice)
			fmt.Fprintf(&b, "  - Estimated value: $%.2f\n", pos.Quantity * *pos.AverageBuyPrice)
		}
		fmt.Fprintf(&b, "Available balance: $%.2f\n", pos.AvailableUSD)
		b.WriteString("Available actions: SELL (close the position) or HOLD (keep it).\n")
	} else {
		b.WriteString("NO OPEN POSITION\n")
		b.WriteString("  - Quantity: 0, no exposure to the asset\n")
		fmt.Fprintf(&b, "Available balance: $%.2f\n", pos.AvailableUSD)
		b.WriteString("Available actions: BUY (open a position) or HOLD (wait).\n")
	}
	return b.String()
}

// formatMarketContext renders the enriched run context for the proposer and
// critic prompts.
func formatMarketContext(rc *Context, pos positionContext) string {
	lines := []string{
		fmt.Sprintf("=== MARKET CONTEXT: %s ===", rc.PrimarySymbol()),
		"",
		formatPositionContext(pos, rc.PrimarySymbol()),
		"PRICE AND LEVELS:",
		fmt.Sprintf("  - Current price: %s", orNAPrice(rc.CurrentPrice)),
		fmt.Sprintf("  - Nearest support: %s (%s)", orNAPrice(rc.NearestSupport), orNA(rc.DistanceToSupport)),
		fmt.Sprintf("  - Nearest resistance: %s (%s)", orNAPrice(rc.NearestResistance), orNA(rc.DistanceToResistance)),
		"",
		"TECHNICAL ANALYSIS:",
		fmt.Sprintf("  - Trend: %s", orNA(rc.Trend)),
		fmt.Sprintf("  - Crossover state (SMA 25/200): %s", orNA(rc.Crossover)),
		fmt.Sprintf("  - Momentum: %s", orNA(rc.Momentum)),
		fmt.Sprintf("  - Technical conclusion: %s", orNA(rc.TechnicalConclusion)),
		"",
		"NEWS SENTIMENT:",
		fmt.Sprintf("  - Overall sentiment: %s", orNA(rc.NewsSentiment)),
		fmt.Sprintf("  - Context: %s", orNA(rc.NewsSummary)),
		fmt.Sprintf("  - Market opinion: %s", orNA(rc.NewsOpinion)),
		"",
		"MARKET SENTIMENT INDEX:",
		fmt.Sprintf("  - Index: %s/100", orNAIndex(rc.SentimentIndex)),
		fmt.Sprintf("  - Classification: %s", orNA(rc.SentimentClassification)),
	}
	return strings.Join(lines, "\n")
}

// formatDebate renders the proposer/critic exchange for the arbiter prompt.
func formatDebate(rc *Context) string {
	var b strings.Builder
	b.WriteString("=== DEBATE: PROPOSER vs CRITIC ===\n\n")

	b.WriteString("PROPOSER:\n")
	if rc.Proposal != nil {
		fmt.Fprintf(&b, "  Proposal: %s (confidence %s)\n", strings.ToUpper(rc.Proposal.Direction), rc.Proposal.Confidence)
		fmt.Fprintf(&b, "  Justification: %s\n", rc.Proposal.Justification)
		for _, factor := range rc.Proposal.KeyFactors {
			fmt.Fprintf(&b, "    - %s\n", factor)
		}
	}

	b.WriteString("\nCRITIC:\n")
	if rc.Critique != nil {
		fmt.Fprintf(&b, "  Assessment: %s\n", rc.Critique.OverallAssessment)
		fmt.Fprintf(&b, "  Critique: %s\n", rc.Critique.MainCritique)
		b.WriteString("  Identified risks:\n")
		for _, risk := range rc.Critique.IdentifiedRisks {
			fmt.Fprintf(&b, "    - %s\n", risk)
		}
		fmt.Fprintf(&b, "  Recommendation: %s\n", rc.Critique.Recommendation)
	}
	return b.String()
}
