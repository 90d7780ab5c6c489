// Package nlp turns a free-text restaurant order into a structured ParseResult.
//
// The engine is a pure function of the utterance and the menu names passed
// with each call. A Parser is immutable after construction and may be shared
// by any number of goroutines.
package nlp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tastybyte/orderbot/internal/domain"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
)

// ClarificationUnclearItems is the clarification type used when no clause resolved
const ClarificationUnclearItems = "unclear_items"

// ParseResult is the structured outcome of parsing one utterance
type ParseResult struct {
	Intent             Intent    `json:"intent"`
	Items              []string  `json:"items"`
	Quantities         []float64 `json:"quantities"`
	Confidence         float64   `json:"confidence"`
	NeedsClarification bool      `json:"needs_clarification"`
	ClarificationType  *string   `json:"clarification_type"`
	AvailableOptions   []string  `json:"available_options"`
	UnclearItems       []string  `json:"unclear_items"`
	// PendingQuantity carries the amount asked for a generic category while
	// the customer still has to pick the variant
	PendingQuantity *float64 `json:"pending_quantity,omitempty"`
}

// Clarification returns the clarification type or "" when none is needed
func (r ParseResult) Clarification() string {
	if r.ClarificationType == nil {
		return ""
	}
	return *r.ClarificationType
}

func emptyResult(intent Intent) ParseResult {
	return ParseResult{
		Intent:           intent,
		Items:            []string{},
		Quantities:       []float64{},
		AvailableOptions: []string{},
		UnclearItems:     []string{},
	}
}

type parserOptions struct {
	logger     logging.Logger
	zeroShot   domain.ZeroShotClassifier
	timeout    time.Duration
	numbers    domain.NumberParser
	categories []GenericCategory
	normalizer *Normalizer
	threshold  float64
	goodEnough float64
}

// Option configures a Parser
type Option func(*parserOptions)

// WithLogger sets the logger used for stage-by-stage decisions
func WithLogger(l logging.Logger) Option {
	return func(o *parserOptions) { o.logger = l }
}

// WithClassifier enables an external zero-shot classifier as the last intent rule
func WithClassifier(c domain.ZeroShotClassifier) Option {
	return func(o *parserOptions) { o.zeroShot = c }
}

// WithClassifierTimeout bounds each zero-shot call
func WithClassifierTimeout(d time.Duration) Option {
	return func(o *parserOptions) { o.timeout = d }
}

// WithNumberParser replaces the word-number parser. nil disables that step.
func WithNumberParser(p domain.NumberParser) Option {
	return func(o *parserOptions) { o.numbers = p }
}

// WithCategories replaces the generic categories
func WithCategories(categories []GenericCategory) Option {
	return func(o *parserOptions) { o.categories = categories }
}

// WithNormalizer replaces the substitution tables
func WithNormalizer(n *Normalizer) Option {
	return func(o *parserOptions) { o.normalizer = n }
}

// WithThresholds sets the fuzzy acceptance floor and the good-enough ceiling
func WithThresholds(threshold, goodEnough float64) Option {
	return func(o *parserOptions) {
		o.threshold = threshold
		o.goodEnough = goodEnough
	}
}

// Parser sequences every engine stage. It is the only entry point of the package.
type Parser struct {
	logger     logging.Logger
	normalizer *Normalizer
	matcher    *FuzzyMatcher
	quantities *QuantityExtractor
	classifier *IntentClassifier
	resolver   *GenericItemResolver
	extractor  *ItemQuantityExtractor
}

// NewParser builds a Parser, compiling every table once
func NewParser(opts ...Option) *Parser {
	o := parserOptions{
		logger:     logging.NewNop(),
		timeout:    DefaultClassifierTimeout,
		numbers:    WordNumberParser{},
		categories: DefaultCategories(),
		threshold:  DefaultFuzzyThreshold,
		goodEnough: DefaultFuzzyGoodEnough,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.normalizer == nil {
		o.normalizer = DefaultNormalizer()
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	matcher := NewFuzzyMatcher(o.normalizer, o.threshold, o.goodEnough)
	quantities := NewQuantityExtractor(o.numbers)

	return &Parser{
		logger:     o.logger,
		normalizer: o.normalizer,
		matcher:    matcher,
		quantities: quantities,
		classifier: NewIntentClassifier(o.normalizer, matcher, quantities, o.zeroShot, o.timeout, o.logger),
		resolver:   NewGenericItemResolver(o.normalizer, o.categories),
		extractor:  NewItemQuantityExtractor(o.normalizer, matcher, quantities, o.logger),
	}
}

// Normalize exposes the parser's normalizer
func (p *Parser) Normalize(text string) string {
	return p.normalizer.Normalize(text)
}

// Parse classifies text and, for food orders, extracts items and quantities.
// It never panics and always returns a well-formed result.
func (p *Parser) Parse(ctx context.Context, text string, menuNames []string) (result ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("parser panic recovered", map[string]interface{}{
				"text":  text,
				"panic": fmt.Sprint(r),
			})
			result = emptyResult(IntentUnknown)
		}
	}()

	// Step 1: empty input
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyResult(IntentUnknown)
	}
	p.logger.Info("processing order text", map[string]interface{}{"text": text})

	// Step 2: intent
	intent := p.classifier.Classify(ctx, text, menuNames)
	result = emptyResult(intent)

	// Step 3: items, only for food orders
	if intent == IntentOrderFood {
		p.extract(text, menuNames, &result)
	}

	// Step 4: confidence
	result.Confidence = Score(text, intent, result.Items, result.Quantities)

	p.logger.Info("parse result", map[string]interface{}{
		"intent":              result.Intent,
		"items":               result.Items,
		"quantities":          result.Quantities,
		"confidence":          result.Confidence,
		"needs_clarification": result.NeedsClarification,
	})
	return result
}

func (p *Parser) extract(text string, menuNames []string, result *ParseResult) {
	// A bare category wins over item extraction
	if cat, ok := p.resolver.Resolve(text, menuNames); ok {
		qty, found := p.quantities.Extract(text)
		if !found {
			qty = 1
		}
		name := cat.Name
		result.NeedsClarification = true
		result.ClarificationType = &name
		result.AvailableOptions = append([]string{}, cat.Variants...)
		result.PendingQuantity = &qty
		p.logger.Info("generic item needs clarification", map[string]interface{}{
			"category": cat.Name,
			"quantity": qty,
		})
		return
	}

	ex := p.extractor.Extract(text, menuNames)
	result.Items = ex.Items
	result.Quantities = ex.Quantities
	result.UnclearItems = ex.Unclear

	if len(ex.Items) == 0 && len(ex.Unclear) > 0 {
		kind := ClarificationUnclearItems
		result.NeedsClarification = true
		result.ClarificationType = &kind
		result.AvailableOptions = append([]string{}, ex.Unclear...)
	}
}
