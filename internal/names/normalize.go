// Package names normalizes person names for fuzzy lookups. Identity
// labeling itself is exact and case-sensitive; normalization only serves
// user-facing filters such as `faces stats --person`.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Normalize normalizes a name for comparison (lowercase, no diacritics, spaces for dashes).
func Normalize(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// Match reports whether two names refer to the same person after
// normalization.
func Match(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
