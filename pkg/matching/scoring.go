package matching

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/hbollon/go-edlib"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Metric selects the edit-distance ratio used to score two strings
type Metric string

const (
	// MetricIndel scores with the insert/delete-only edit distance normalized by the
	// combined length of both strings.
	MetricIndel Metric = "indel"
	// MetricLevenshtein scores with the Levenshtein distance normalized by the longer string.
	MetricLevenshtein Metric = "levenshtein"
)

// DefaultThreshold is the minimum score (0-100) for two values to count as a fuzzy match
const DefaultThreshold = 80.0

// ParseMetric converts a configuration value into a Metric
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MetricIndel, nil
	case MetricIndel, MetricLevenshtein:
		return m, nil
	default:
		return "", fmt.Errorf("unknown similarity metric %q (use %q or %q)", s, MetricIndel, MetricLevenshtein)
	}
}

// Scorer compares strings case-insensitively on a 0-100 scale
type Scorer struct {
	metric Metric
}

// NewScorer creates a new Scorer for the given metric
func NewScorer(metric Metric) *Scorer {
	if metric == "" {
		metric = MetricIndel
	}
	return &Scorer{metric: metric}
}

// Metric returns the metric the scorer uses
func (s *Scorer) Metric() Metric {
	return s.metric
}

// Ratio returns the similarity of a and b in [0, 100]. Inputs are NFC-normalized and
// lowercased first, so the score is case-insensitive. Ratio is symmetric and
// Ratio(a, a) == 100.
func (s *Scorer) Ratio(a, b string) float64 {
	a = foldForCompare(a)
	b = foldForCompare(b)
	if a == b {
		return 100
	}

	switch s.metric {
	case MetricLevenshtein:
		return LevenshteinRatio(a, b)
	default:
		return IndelRatio(a, b)
	}
}

// FuzzyMatch reports whether both values are present and score at least threshold.
// Blank values never match.
func (s *Scorer) FuzzyMatch(a, b string, threshold float64) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return s.Ratio(a, b) >= threshold
}

// IndelRatio computes 100 * (1 - d/(len(a)+len(b))) where d is the insert/delete edit
// distance len(a)+len(b)-2*LCS(a, b). Lengths are counted in runes, so a single empty side
// scores 0.
func IndelRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	distance := total - 2*edlib.LCS(a, b)
	return 100 * (1 - float64(distance)/float64(total))
}

// LevenshteinRatio computes 100 * (1 - d/max(len(a), len(b))) where d is the Levenshtein
// distance. Lengths are counted in runes.
func LevenshteinRatio(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 100
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(distance)/float64(maxLen))
}

func foldForCompare(s string) string {
	return normalizers.ApplyChain(s, "nfc", "lowercase")
}
