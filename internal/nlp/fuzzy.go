package nlp

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// Default fuzzy thresholds on the 0-100 scale
const (
	DefaultFuzzyThreshold  = 70.0
	DefaultFuzzyGoodEnough = 85.0
	exactMatchScore        = 100.0
)

var tokenPattern = regexp.MustCompile(`\w+`)

// Match is a menu name resolved from free text together with its similarity score
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// FuzzyMatcher resolves a text fragment to the most similar menu name
type FuzzyMatcher struct {
	normalizer *Normalizer
	threshold  float64
	goodEnough float64
}

// NewFuzzyMatcher creates a matcher. Non-positive thresholds fall back to the defaults.
func NewFuzzyMatcher(normalizer *Normalizer, threshold, goodEnough float64) *FuzzyMatcher {
	if normalizer == nil {
		normalizer = DefaultNormalizer()
	}
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	if goodEnough <= 0 {
		goodEnough = DefaultFuzzyGoodEnough
	}
	return &FuzzyMatcher{
		normalizer: normalizer,
		threshold:  threshold,
		goodEnough: goodEnough,
	}
}

// Threshold returns the acceptance floor
func (m *FuzzyMatcher) Threshold() float64 {
	return m.threshold
}

// Match returns the best menu name for candidate, or false when nothing reaches
// the threshold. Ties go to the name listed first.
func (m *FuzzyMatcher) Match(candidate string, menuNames []string) (Match, bool) {
	query := strings.TrimSpace(m.normalizer.Normalize(candidate))
	if query == "" || len(menuNames) == 0 {
		return Match{}, false
	}

	// Step 1: exact match
	for _, name := range menuNames {
		if strings.ToLower(name) == query {
			return Match{Name: name, Score: exactMatchScore}, true
		}
	}

	var best Match

	// Step 2: word-order tolerant scorer
	if name, score := bestScore(query, menuNames, tokenSortRatio); score >= m.threshold {
		best = Match{Name: name, Score: score}
	}

	// Step 3: partial overlap, only while the result is not yet convincing
	if best.Score < m.goodEnough {
		if name, score := bestScore(query, menuNames, partialRatio); score > best.Score && score >= m.threshold {
			best = Match{Name: name, Score: score}
		}
	}

	if best.Name == "" {
		return Match{}, false
	}
	return best, true
}

// bestScore applies scorer to every menu name and keeps the first highest score
func bestScore(query string, menuNames []string, scorer func(a, b string) float64) (string, float64) {
	bestName := ""
	best := -1.0
	for _, name := range menuNames {
		score := scorer(query, strings.ToLower(name))
		if score > best {
			best = score
			bestName = name
		}
	}
	return bestName, best
}

// ratio is the normalized indel similarity of two strings on a 0-100 scale
func ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return exactMatchScore
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

// tokenSortRatio compares stemmed, alphabetically sorted word lists
func tokenSortRatio(a, b string) float64 {
	return ratio(sortedStems(a), sortedStems(b))
}

func sortedStems(s string) string {
	tokens := tokenPattern.FindAllString(s, -1)
	for i, tok := range tokens {
		tokens[i] = porter2.Stem(tok)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// partialRatio scores the shorter string against every window of the
// same length in the longer one and returns the best window score
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	shortStr := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		score := ratio(shortStr, string(long[i:i+len(short)]))
		if score > best {
			best = score
			if best == exactMatchScore {
				break
			}
		}
	}
	return best
}
