package pipeline

import "committee-trade-bot-go/internal/reasoning"

// JSON schemas the reasoning engine validates each role's output against.
// Structural bounds (risk counts, factor counts, minimum lengths) live here
// so malformed model output is rejected before it reaches the run context.

const newsAnalysisSchemaJSON = `{
	"type": "object",
	"required": ["context_summary", "market_opinion", "sentiment"],
	"properties": {
		"context_summary": {"type": "string", "minLength": 20},
		"market_opinion": {"type": "string", "minLength": 10},
		"sentiment": {"type": "string", "enum": ["positive", "negative", "mixed", "neutral"]}
	}
}`

const technicalAnalysisSchemaJSON = `{
	"type": "object",
	"required": ["trend_analysis", "crossover_status", "momentum", "conclusion"],
	"properties": {
		"trend_analysis": {"type": "string", "minLength": 20},
		"crossover_status": {"type": "string", "enum": ["golden_cross", "death_cross", "neutral", "approaching"]},
		"momentum": {"type": "string", "enum": ["bullish", "bearish", "sideways"]},
		"conclusion": {"type": "string", "minLength": 20}
	}
}`

const proposalSchemaJSON = `{
	"type": "object",
	"required": ["direction", "justification", "key_factors", "confidence_level"],
	"properties": {
		"direction": {"type": "string", "enum": ["buy", "sell", "hold"]},
		"justification": {"type": "string", "minLength": 50},
		"key_factors": {
			"type": "array",
			"minItems": 2,
			"maxItems": 5,
			"items": {"type": "string"}
		},
		"confidence_level": {"type": "string", "enum": ["high", "medium", "low"]}
	}
}`

const critiqueSchemaJSON = `{
	"type": "object",
	"required": ["overall_assessment", "main_critique", "identified_risks", "recommendation"],
	"properties": {
		"overall_assessment": {"type": "string", "enum": ["reject", "proceed_with_caution", "acceptable"]},
		"main_critique": {"type": "string", "minLength": 100},
		"identified_risks": {
			"type": "array",
			"minItems": 3,
			"maxItems": 7,
			"items": {"type": "string"}
		},
		"contradictions": {"type": "array", "items": {"type": "string"}},
		"missing_considerations": {"type": "array", "items": {"type": "string"}},
		"recommendation": {"type": "string", "minLength": 50}
	}
}`

const decisionSchemaJSON = `{
	"type": "object",
	"required": ["final_decision", "reasoning", "proposer_points_accepted", "critic_points_accepted", "key_factors_for_decision", "risk_assessment", "confidence_level"],
	"properties": {
		"final_decision": {"type": "string", "enum": ["buy", "sell", "hold"]},
		"reasoning": {"type": "string", "minLength": 100},
		"proposer_points_accepted": {
			"type": "array",
			"minItems": 1,
			"maxItems": 5,
			"items": {"type": "string"}
		},
		"critic_points_accepted": {
			"type": "array",
			"minItems": 1,
			"maxItems": 5,
			"items": {"type": "string"}
		},
		"key_factors_for_decision": {
			"type": "array",
			"minItems": 2,
			"maxItems": 5,
			"items": {"type": "string"}
		},
		"risk_assessment": {"type": "string", "enum": ["low", "medium", "high"]},
		"confidence_level": {"type": "string", "enum": ["high", "medium", "low"]}
	}
}`

var (
	newsAnalysisSchema      = reasoning.MustCompileSchema("news_analysis.json", newsAnalysisSchemaJSON)
	technicalAnalysisSchema = reasoning.MustCompileSchema("technical_analysis.json", technicalAnalysisSchemaJSON)
	proposalSchema          = reasoning.MustCompileSchema("proposal.json", proposalSchemaJSON)
	critiqueSchema          = reasoning.MustCompileSchema("critique.json", critiqueSchemaJSON)
	decisionSchema          = reasoning.MustCompileSchema("decision.json", decisionSchemaJSON)
)
