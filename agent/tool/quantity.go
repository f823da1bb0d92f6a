package tool

import (
	"regexp"
	"strconv"
	"strings"
)

// Recognizes quantity prefixes like "2 pastéis de carne", "3x queijo",
// or "2 unidades de frango": leading digits, an optional unit marker,
// optional filler words, then the flavor text.
var quantityPrefixRe = regexp.MustCompile(`(?i)^\s*(\d+)\s*(?:x|vez(?:es)?|past[eé]is?|unidades?|pcs?|pçs?)?\s*(?:de|do|da)?\s*(.+)$`)

// extractQuantityPrefix splits a spoken flavor into the flavor text and
// an embedded quantity. It reports ok=false when no prefix is present,
// returning the trimmed input unchanged.
func extractQuantityPrefix(flavor string) (string, int, bool) {
	trimmed := strings.TrimSpace(flavor)
	if trimmed == "" {
		return "", 0, false
	}

	groups := quantityPrefixRe.FindStringSubmatch(trimmed)
	if groups == nil {
		return trimmed, 0, false
	}

	qty, err := strconv.Atoi(groups[1])
	if err != nil {
		return trimmed, 0, false
	}
	remainder := strings.TrimSpace(groups[2])
	if remainder == "" {
		return trimmed, 0, false
	}
	return remainder, qty, true
}
