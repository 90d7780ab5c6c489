package nlp

import (
	"regexp"
	"strings"
)

type compiledCategory struct {
	category  GenericCategory
	token     *regexp.Regexp
	qualified []*regexp.Regexp
}

// GenericItemResolver detects a bare food family ("pizza") that needs the
// customer to pick a specific variant
type GenericItemResolver struct {
	normalizer *Normalizer
	categories []compiledCategory
}

// NewGenericItemResolver compiles categories, which are checked in order
func NewGenericItemResolver(normalizer *Normalizer, categories []GenericCategory) *GenericItemResolver {
	compiled := make([]compiledCategory, 0, len(categories))
	for _, cat := range categories {
		name := regexp.QuoteMeta(strings.ToLower(cat.Name))
		cc := compiledCategory{
			category: cat,
			token:    regexp.MustCompile(`\b` + name + `\b`),
		}
		for _, q := range cat.Qualifiers {
			q = regexp.QuoteMeta(strings.ToLower(q))
			cc.qualified = append(cc.qualified,
				regexp.MustCompile(`\b`+q+`\s+`+name+`\b`),
				regexp.MustCompile(`\b`+name+`\s+`+q+`\b`),
			)
		}
		compiled = append(compiled, cc)
	}
	return &GenericItemResolver{
		normalizer: normalizer,
		categories: compiled,
	}
}

// Resolve returns the first category mentioned without a qualifier. Only one
// category is reported per call even if the text names several.
func (r *GenericItemResolver) Resolve(text string, menuNames []string) (GenericCategory, bool) {
	normalized := r.normalizer.Normalize(text)

	for _, cc := range r.categories {
		if !cc.token.MatchString(normalized) {
			continue
		}
		if cc.hasQualifier(normalized) {
			continue
		}
		if containsMultiWordName(normalized, menuNames) {
			continue
		}
		return cc.category, true
	}
	return GenericCategory{}, false
}

func (cc compiledCategory) hasQualifier(text string) bool {
	for _, p := range cc.qualified {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func containsMultiWordName(text string, menuNames []string) bool {
	for _, name := range menuNames {
		lower := strings.ToLower(name)
		if len(strings.Fields(lower)) > 1 && strings.Contains(text, lower) {
			return true
		}
	}
	return false
}
