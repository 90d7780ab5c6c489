package nlp

import (
	"regexp"
	"strings"
)

// maxNormalizePasses bounds the fixed-point loop in Normalize
const maxNormalizePasses = 4

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// Normalizer lower-cases text and folds misspellings and aliases onto menu wording.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	mistakes []substitution
	aliases  []substitution
}

// NewNormalizer compiles the given ordered substitution tables
func NewNormalizer(mistakes, aliases []SubstitutionRule) *Normalizer {
	return &Normalizer{
		mistakes: compileSubstitutions(mistakes),
		aliases:  compileSubstitutions(aliases),
	}
}

// DefaultNormalizer returns a Normalizer with the built-in restaurant tables
func DefaultNormalizer() *Normalizer {
	return NewNormalizer(defaultMistakes, defaultAliases)
}

// Normalize returns the lower-cased canonical form of text.
// Normalize(Normalize(x)) == Normalize(x) for every x.
func (n *Normalizer) Normalize(text string) string {
	out := strings.ToLower(text)
	for pass := 0; pass < maxNormalizePasses; pass++ {
		next := n.apply(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (n *Normalizer) apply(text string) string {
	// Step 1: spelling corrections
	for _, s := range n.mistakes {
		text = s.pattern.ReplaceAllLiteralString(text, s.replacement)
	}

	// Step 2: alias folding
	for _, s := range n.aliases {
		text = s.pattern.ReplaceAllLiteralString(text, s.replacement)
	}
	return text
}

// compileSubstitutions builds one whole-word pattern per rule. When the canonical
// form contains the alias ("tea" -> "hot tea") the canonical form is tried first,
// so text that is already canonical maps onto itself.
func compileSubstitutions(rules []SubstitutionRule) []substitution {
	out := make([]substitution, 0, len(rules))
	for _, r := range rules {
		from := strings.ToLower(strings.TrimSpace(r.From))
		to := strings.ToLower(strings.TrimSpace(r.To))
		if from == "" {
			continue
		}

		expr := regexp.QuoteMeta(from)
		if to != from && strings.Contains(to, from) {
			expr = regexp.QuoteMeta(to) + "|" + expr
		}
		out = append(out, substitution{
			pattern:     regexp.MustCompile(`(?i)\b(?:` + expr + `)\b`),
			replacement: to,
		})
	}
	return out
}
