package metric

import (
	"fmt"
	"regexp"
	"strings"
)

// Metric names accepted by New.
const (
	ExactMatch            = "exact_match"
	QuasiExactMatch       = "quasi_exact_match"
	FinalNumberExactMatch = "final_number_exact_match"
)

// Metric scores one completion against the expected answers; scores are
// in [0, 1].
type Metric interface {
	Name() string
	Score(completion string, expected []string) float64
}

func New(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ExactMatch:
		return exactMatch{}, nil
	case QuasiExactMatch:
		return quasiExactMatch{}, nil
	case FinalNumberExactMatch:
		return finalNumberExactMatch{}, nil
	default:
		return nil, fmt.Errorf("metric: unknown metric %q", name)
	}
}

type exactMatch struct{}

func (exactMatch) Name() string { return ExactMatch }

func (exactMatch) Score(completion string, expected []string) float64 {
	got := strings.TrimSpace(completion)
	for _, want := range expected {
		if got == strings.TrimSpace(want) {
			return 1
		}
	}
	return 0
}

type quasiExactMatch struct{}

func (quasiExactMatch) Name() string { return QuasiExactMatch }

func (quasiExactMatch) Score(completion string, expected []string) float64 {
	got := normalize(completion)
	for _, want := range expected {
		if got == normalize(want) {
			return 1
		}
	}
	return 0
}

var (
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	articleRe    = regexp.MustCompile(`\b(a|an|the)\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// normalize lowercases, strips punctuation and English articles, and
// collapses whitespace.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRe.ReplaceAllString(s, "")
	s = articleRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type finalNumberExactMatch struct{}

func (finalNumberExactMatch) Name() string { return FinalNumberExactMatch }

var numberRe = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

func (finalNumberExactMatch) Score(completion string, expected []string) float64 {
	got, ok := finalNumber(completion)
	if !ok {
		return 0
	}
	for _, want := range expected {
		if num, ok := finalNumber(want); ok && num == got {
			return 1
		}
	}
	return 0
}

// finalNumber extracts the last number in the text, normalizing the
// decimal separator and trailing zeros aside, compared as strings after
// stripping grouping commas.
func finalNumber(s string) (string, bool) {
	matches := numberRe.FindAllString(s, -1)
	if len(matches) == 0 {
		return "", false
	}
	last := matches[len(matches)-1]
	last = strings.ReplaceAll(last, ",", ".")
	last = strings.TrimSuffix(last, ".")
	return last, true
}
