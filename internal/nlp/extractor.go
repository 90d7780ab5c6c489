package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
)

// Splits an utterance into one clause per requested item
var clauseSeparator = regexp.MustCompile(`\band\b|,|;`)

// A count written directly before or after an item name, as in "4 coke", "6x coke" or "coke 5"
var (
	quantityBefore = regexp.MustCompile(`(\d+)x?\s*$`)
	quantityAfter  = regexp.MustCompile(`^\s*(\d+)`)
)

// Extraction is the outcome of resolving an utterance into menu items.
// Items and Quantities are aligned and Items holds no duplicates.
type Extraction struct {
	Items      []string  `json:"items"`
	Quantities []float64 `json:"quantities"`
	Unclear    []string  `json:"unclear_items"`
}

// ItemQuantityExtractor resolves each clause of an utterance to a menu item and a quantity
type ItemQuantityExtractor struct {
	normalizer *Normalizer
	matcher    *FuzzyMatcher
	quantities *QuantityExtractor
	logger     logging.Logger
}

// NewItemQuantityExtractor creates an extractor from its collaborators
func NewItemQuantityExtractor(
	normalizer *Normalizer,
	matcher *FuzzyMatcher,
	quantities *QuantityExtractor,
	logger logging.Logger,
) *ItemQuantityExtractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ItemQuantityExtractor{
		normalizer: normalizer,
		matcher:    matcher,
		quantities: quantities,
		logger:     logger,
	}
}

// orderedTotals sums quantities per item and remembers first-seen order
type orderedTotals struct {
	order  []string
	totals map[string]float64
}

func newOrderedTotals() *orderedTotals {
	return &orderedTotals{totals: make(map[string]float64)}
}

func (o *orderedTotals) add(item string, qty float64) float64 {
	if _, ok := o.totals[item]; !ok {
		o.order = append(o.order, item)
	}
	o.totals[item] += qty
	return o.totals[item]
}

func (o *orderedTotals) has(item string) bool {
	_, ok := o.totals[item]
	return ok
}

// Extract resolves text into aggregated items, quantities and unmatched clauses
func (e *ItemQuantityExtractor) Extract(text string, menuNames []string) Extraction {
	normalized := e.normalizer.Normalize(text)
	e.logger.Debug("extracting items", map[string]interface{}{"normalized": normalized})

	totals := newOrderedTotals()
	unclear := []string{}

	for _, clause := range clauseSeparator.Split(normalized, -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		qty, ok := e.quantities.Extract(clause)
		if !ok {
			qty = 1
		}

		match, found := e.resolveClause(clause, menuNames)
		if !found {
			unclear = append(unclear, clause)
			e.logger.Warn("unclear item", map[string]interface{}{"clause": clause})
			continue
		}

		total := totals.add(match.Name, qty)
		e.logger.Debug("item added", map[string]interface{}{
			"item":     match.Name,
			"quantity": qty,
			"total":    total,
			"score":    match.Score,
		})
	}

	// Final sweep for menu names mentioned without a separator
	for _, name := range menuNames {
		lower := strings.ToLower(name)
		if lower == "" || totals.has(name) || !strings.Contains(normalized, lower) {
			continue
		}
		qty := nearbyQuantity(normalized, lower)
		totals.add(name, qty)
		e.logger.Debug("item caught in final sweep", map[string]interface{}{
			"item":     name,
			"quantity": qty,
		})
	}

	result := Extraction{
		Items:      make([]string, 0, len(totals.order)),
		Quantities: make([]float64, 0, len(totals.order)),
		Unclear:    unclear,
	}
	for _, item := range totals.order {
		result.Items = append(result.Items, item)
		result.Quantities = append(result.Quantities, totals.totals[item])
	}

	e.logger.Info("extraction complete", map[string]interface{}{
		"items":      result.Items,
		"quantities": result.Quantities,
		"unclear":    result.Unclear,
	})
	return result
}

// resolveClause tries, in order, a literal menu name, the whole clause, and
// finally each longer word of the clause
func (e *ItemQuantityExtractor) resolveClause(clause string, menuNames []string) (Match, bool) {
	for _, name := range menuNames {
		lower := strings.ToLower(name)
		if lower != "" && strings.Contains(clause, lower) {
			return Match{Name: name, Score: exactMatchScore}, true
		}
	}

	if m, ok := e.matcher.Match(clause, menuNames); ok {
		return m, true
	}

	var best Match
	for _, word := range tokenPattern.FindAllString(clause, -1) {
		if len(word) <= 3 {
			continue
		}
		if m, ok := e.matcher.Match(word, menuNames); ok && m.Score > best.Score {
			best = m
		}
	}
	return best, best.Name != ""
}

// nearbyQuantity looks for a number right before or after item, defaulting to 1
func nearbyQuantity(text, item string) float64 {
	if item == "" {
		return 1
	}
	for offset := 0; ; {
		i := strings.Index(text[offset:], item)
		if i < 0 {
			return 1
		}
		start := offset + i
		end := start + len(item)

		m := quantityBefore.FindStringSubmatch(text[:start])
		if m == nil {
			m = quantityAfter.FindStringSubmatch(text[end:])
		}
		if m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return float64(n)
			}
			return 1
		}
		offset = end
	}
}
