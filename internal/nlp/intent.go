package nlp

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tastybyte/orderbot/internal/domain"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
)

// Intent is the purpose assigned to an utterance
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentHelp        Intent = "help"
	IntentShowMenu    Intent = "show_menu"
	IntentCancelOrder Intent = "cancel_order"
	IntentViewOrders  Intent = "view_orders"
	IntentOrderFood   Intent = "order_food"
	IntentUnknown     Intent = "unknown"
)

// zeroShotMinScore is the confidence a zero-shot label must exceed to be used
const zeroShotMinScore = 0.5

// DefaultClassifierTimeout bounds a single zero-shot classifier call
const DefaultClassifierTimeout = 2 * time.Second

// Valid reports whether i is one of the known intents
func (i Intent) Valid() bool {
	switch i {
	case IntentGreeting, IntentHelp, IntentShowMenu, IntentCancelOrder,
		IntentViewOrders, IntentOrderFood, IntentUnknown:
		return true
	}
	return false
}

// IntentRule maps a set of patterns onto an intent. The rule fires when any
// pattern matches and no exclusion does.
type IntentRule struct {
	Intent   Intent
	Patterns []*regexp.Regexp
	Exclude  []*regexp.Regexp
}

// Match returns the first matching pattern
func (r IntentRule) Match(text string) (*regexp.Regexp, bool) {
	for _, ex := range r.Exclude {
		if ex.MatchString(text) {
			return nil, false
		}
	}
	for _, p := range r.Patterns {
		if p.MatchString(text) {
			return p, true
		}
	}
	return nil, false
}

// DefaultIntentRules compiles the built-in priority-ordered rule table
func DefaultIntentRules() []IntentRule {
	rules := make([]IntentRule, 0, len(intentPatterns))
	for _, def := range intentPatterns {
		rules = append(rules, IntentRule{
			Intent:   def.intent,
			Patterns: compileAll(def.patterns),
			Exclude:  compileAll(def.exclude),
		})
	}
	return rules
}

func compileAll(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return out
}

// IntentClassifier assigns exactly one Intent to an utterance
type IntentClassifier struct {
	rules         []IntentRule
	orderPatterns []*regexp.Regexp
	normalizer    *Normalizer
	matcher       *FuzzyMatcher
	quantities    *QuantityExtractor
	zeroShot      domain.ZeroShotClassifier
	timeout       time.Duration
	logger        logging.Logger
}

// NewIntentClassifier creates a classifier. zeroShot may be nil.
func NewIntentClassifier(
	normalizer *Normalizer,
	matcher *FuzzyMatcher,
	quantities *QuantityExtractor,
	zeroShot domain.ZeroShotClassifier,
	timeout time.Duration,
	logger logging.Logger,
) *IntentClassifier {
	if timeout <= 0 {
		timeout = DefaultClassifierTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &IntentClassifier{
		rules:         DefaultIntentRules(),
		orderPatterns: compileAll(orderFoodPatterns),
		normalizer:    normalizer,
		matcher:       matcher,
		quantities:    quantities,
		zeroShot:      zeroShot,
		timeout:       timeout,
		logger:        logger,
	}
}

// Classify runs the rule table top to bottom and returns the first intent that fires
func (c *IntentClassifier) Classify(ctx context.Context, text string, menuNames []string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return IntentUnknown
	}

	// Steps 1-5: explicit phrase rules
	for _, rule := range c.rules {
		if p, ok := rule.Match(lower); ok {
			c.logger.Debug("intent matched by pattern", map[string]interface{}{
				"intent":  rule.Intent,
				"pattern": p.String(),
			})
			return rule.Intent
		}
	}

	// Steps 6-7: food mentioned with a quantity and food mentioned alone both
	// return OrderFood, so one check covers them; the quantity is only logged
	if c.ContainsFood(text, menuNames) {
		c.logger.Info("implicit order detected", map[string]interface{}{
			"has_quantity": c.quantities.HasQuantity(text),
		})
		return IntentOrderFood
	}

	// Step 8: ordering verbs
	for _, p := range c.orderPatterns {
		if p.MatchString(lower) {
			c.logger.Debug("intent matched by pattern", map[string]interface{}{
				"intent":  IntentOrderFood,
				"pattern": p.String(),
			})
			return IntentOrderFood
		}
	}

	// Step 9: zero-shot fallback
	if intent, ok := c.classifyZeroShot(ctx, text); ok {
		return intent
	}

	c.logger.Debug("no clear intent detected", map[string]interface{}{"text": text})
	return IntentUnknown
}

// ContainsFood reports whether text mentions something on the menu, either
// literally, by one of its longer words, or by a fuzzy match of a longer word
func (c *IntentClassifier) ContainsFood(text string, menuNames []string) bool {
	normalized := c.normalizer.Normalize(text)

	for _, name := range menuNames {
		lowerName := strings.ToLower(name)
		if lowerName != "" && strings.Contains(normalized, lowerName) {
			return true
		}
		for _, word := range strings.Fields(lowerName) {
			if len(word) > 3 && strings.Contains(normalized, word) {
				return true
			}
		}
	}

	for _, word := range tokenPattern.FindAllString(normalized, -1) {
		if len(word) <= 3 {
			continue
		}
		if _, ok := c.matcher.Match(word, menuNames); ok {
			return true
		}
	}
	return false
}

type zeroShotOutcome struct {
	label string
	score float64
	err   error
}

// classifyZeroShot asks the optional external classifier. Any failure,
// timeout or panic is logged and treated as no opinion.
func (c *IntentClassifier) classifyZeroShot(ctx context.Context, text string) (Intent, bool) {
	if c.zeroShot == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan zeroShotOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- zeroShotOutcome{err: fmt.Errorf("zero-shot classifier panic: %v", r)}
			}
		}()
		label, score, err := c.zeroShot.Classify(ctx, text, ZeroShotLabels)
		done <- zeroShotOutcome{label: label, score: score, err: err}
	}()

	var out zeroShotOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	if out.err != nil {
		c.logger.WithError(out.err).Warn("zero-shot classification failed", nil)
		return "", false
	}

	intent := Intent(out.label)
	if !intent.Valid() || out.score <= zeroShotMinScore {
		c.logger.Debug("zero-shot label rejected", map[string]interface{}{
			"label": out.label,
			"score": out.score,
		})
		return "", false
	}

	c.logger.Debug("intent classified by zero-shot model", map[string]interface{}{
		"intent": intent,
		"score":  out.score,
	})
	return intent, true
}
