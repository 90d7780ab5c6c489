package nlp

import (
	"math"
	"strings"
)

// Score estimates how confident the engine is in a parse, in [0, 1] rounded to two decimals
func Score(text string, intent Intent, items []string, quantities []float64) float64 {
	confidence := 0.5

	switch intent {
	case IntentGreeting, IntentHelp, IntentShowMenu, IntentCancelOrder, IntentViewOrders:
		confidence += 0.3
	case IntentOrderFood:
		if len(items) > 0 {
			confidence += 0.3
		} else {
			confidence -= 0.2
		}
	}

	if len(items) > 0 {
		confidence += 0.2
		if len(items) == len(quantities) {
			confidence += 0.1
		}
	}

	lower := strings.ToLower(text)
	for _, phrase := range orderingPhrases {
		if strings.Contains(lower, phrase) {
			confidence += 0.1
			break
		}
	}

	if intent == IntentOrderFood && integerPattern.MatchString(text) {
		confidence += 0.1
	}

	confidence = math.Max(0, math.Min(1, confidence))
	return math.Round(confidence*100) / 100
}
