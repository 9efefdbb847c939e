package query

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combining diacritical marks block
func isDiacritic(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
}

// Simplify decomposes s, strips diacritical marks and lowercases it, so
// that "Café" and "cafe" compare equal
func Simplify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isDiacritic)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
