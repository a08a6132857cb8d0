package bcb

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a location name for comparison: NFD decomposition,
// combining marks removed, whitespace trimmed, upper-cased.
// "  são paulo " and "SAO PAULO" normalise to the same key.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}
