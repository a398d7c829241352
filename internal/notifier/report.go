package notifier

import (
	"fmt"
	"strings"

	"committee-trade-bot-go/internal/pipeline"
)

// FormatRunReport renders one pipeline run as a plain-text message.
func FormatRunReport(rc *pipeline.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis run for %s\n", strings.Join(rc.Symbols, ", "))

	if !rc.Succeeded() {
		fmt.Fprintf(&b, "\nRun finished with error: %s\n", rc.ErrorMessage)
	}

	if rc.CurrentPrice != nil {
		fmt.Fprintf(&b, "\nPrice: $%.2f\n", *rc.CurrentPrice)
	}
	if rc.NearestSupport != nil {
		fmt.Fprintf(&b, "Support: $%.2f (%s)\n", *rc.NearestSupport, deref(rc.DistanceToSupport))
	}
	if rc.NearestResistance != nil {
		fmt.Fprintf(&b, "Resistance: $%.2f (%s)\n", *rc.NearestResistance, deref(rc.DistanceToResistance))
	}
	if rc.SentimentIndex != nil {
		fmt.Fprintf(&b, "Fear & Greed: %d (%s)\n", *rc.SentimentIndex, deref(rc.SentimentClassification))
	}
	if rc.NewsSentiment != nil {
		fmt.Fprintf(&b, "News sentiment: %s\n", *rc.NewsSentiment)
	}
	if rc.Momentum != nil {
		fmt.Fprintf(&b, "Momentum: %s\n", *rc.Momentum)
	}

	if rc.Decision != nil {
		fmt.Fprintf(&b, "\nFINAL DECISION: %s (risk %s, confidence %s)\n",
			strings.ToUpper(rc.Decision.FinalDecision),
			rc.Decision.RiskAssessment,
			rc.Decision.Confidence,
		)
		fmt.Fprintf(&b, "%s\n", rc.Decision.Reasoning)
	}

	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return "n/a"
	}
	return *s
}
