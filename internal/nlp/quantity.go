package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tastybyte/orderbot/internal/domain"
)

var (
	// Matches the multiplier notation "3x"
	multiplierPattern = regexp.MustCompile(`(\d+)x`)

	// Matches a standalone integer
	integerPattern = regexp.MustCompile(`\b(\d+)\b`)

	// Matches "3x" as its own token, used by the existence check
	multiplierTokenPattern = regexp.MustCompile(`\b\d+x\b`)
)

type compiledQuantityWord struct {
	pattern *regexp.Regexp
	value   float64
}

// QuantityExtractor reads how many of something a text fragment asks for
type QuantityExtractor struct {
	numbers domain.NumberParser
	words   []compiledQuantityWord
}

// NewQuantityExtractor creates an extractor. numbers may be nil, in which case
// the word-number step is skipped.
func NewQuantityExtractor(numbers domain.NumberParser) *QuantityExtractor {
	words := make([]compiledQuantityWord, len(defaultQuantityWords))
	for i, w := range defaultQuantityWords {
		words[i] = compiledQuantityWord{
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(w.word) + `\b`),
			value:   w.value,
		}
	}
	return &QuantityExtractor{
		numbers: numbers,
		words:   words,
	}
}

// Extract returns the quantity stated in fragment. The bool is false when
// no notation matched; callers default to 1.
func (q *QuantityExtractor) Extract(fragment string) (float64, bool) {
	text := strings.ToLower(strings.TrimSpace(fragment))
	if text == "" {
		return 0, false
	}

	// Step 1: "3x"
	if m := multiplierPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return float64(n), true
		}
	}

	// Step 2: bare integer
	if m := integerPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return float64(n), true
		}
	}

	// Step 3: number words over the whole fragment
	if n, ok := q.parseNumberWords(text); ok {
		return float64(n), true
	}

	// Step 4: quantity word table, first hit wins
	for _, w := range q.words {
		if w.pattern.MatchString(text) {
			return w.value, true
		}
	}

	return 0, false
}

// HasQuantity reports whether text carries any quantity notation at all
func (q *QuantityExtractor) HasQuantity(text string) bool {
	lower := strings.ToLower(text)
	if integerPattern.MatchString(lower) || multiplierTokenPattern.MatchString(lower) {
		return true
	}
	for _, w := range q.words {
		if w.pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// parseNumberWords consults the optional number parser. Errors, panics and
// non-positive results count as no opinion.
func (q *QuantityExtractor) parseNumberWords(text string) (n int, ok bool) {
	if q.numbers == nil {
		return 0, false
	}
	defer func() {
		if r := recover(); r != nil {
			n, ok = 0, false
		}
	}()

	n, err := q.numbers.ParseNumber(text)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
