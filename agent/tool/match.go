package tool

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Accept a fuzzy match only above this similarity, so "frango" never
// lands on "carne" by accident.
const matchThreshold = 0.55

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText lowercases, trims, and strips accents so "Pastel de
// Açaí" and "pastel de acai" compare equal.
func normalizeText(value string) string {
	stripped, _, err := transform.String(stripAccents, value)
	if err != nil {
		stripped = value
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

// matchSimilarity scores how well a normalized candidate matches the
// normalized target: exact beats containment beats edit distance.
func matchSimilarity(target, candidate string) float64 {
	if target == "" || candidate == "" {
		return 0
	}
	if candidate == target {
		return 1.0
	}
	if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
		return 0.9
	}
	longest := len([]rune(target))
	if l := len([]rune(candidate)); l > longest {
		longest = l
	}
	distance := levenshtein.ComputeDistance(target, candidate)
	return 1.0 - float64(distance)/float64(longest)
}

// formatCurrency renders a price as Brazilian reais, e.g. R$8,50.
func formatCurrency(value decimal.Decimal) string {
	return "R$" + strings.Replace(value.StringFixed(2), ".", ",", 1)
}
