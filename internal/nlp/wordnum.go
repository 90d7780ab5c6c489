package nlp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoNumberWords is returned when a phrase contains no number words
var ErrNoNumberWords = errors.New("no number words found")

var unitWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scaleWords = map[string]int{
	"thousand": 1000,
	"million":  1000000,
}

// WordNumberParser converts English number words such as "twenty two" or
// "one hundred and five" into an integer. Words that are not number words
// are skipped, so "two large pizzas" yields 2.
type WordNumberParser struct{}

// ParseNumber implements domain.NumberParser
func (WordNumberParser) ParseNumber(text string) (int, error) {
	const (
		none = iota
		unit
		tens
		hundred
	)

	total, current := 0, 0
	found := false
	last := none

	for _, word := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if v, ok := unitWords[word]; ok {
			if last == unit || (last == tens && v >= 10) {
				return 0, fmt.Errorf("redundant number word %q in %q", word, text)
			}
			current += v
			found, last = true, unit
			continue
		}
		if v, ok := tensWords[word]; ok {
			if last == unit || last == tens {
				return 0, fmt.Errorf("redundant number word %q in %q", word, text)
			}
			current += v
			found, last = true, tens
			continue
		}
		if word == "hundred" {
			if current == 0 {
				current = 1
			}
			current *= 100
			found, last = true, hundred
			continue
		}
		if v, ok := scaleWords[word]; ok {
			if current == 0 {
				current = 1
			}
			total += current * v
			current = 0
			found, last = true, none
			continue
		}
	}

	if !found {
		return 0, fmt.Errorf("%w in %q", ErrNoNumberWords, text)
	}
	return total + current, nil
}
