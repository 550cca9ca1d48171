package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText lowercases s, strips diacritics, replaces everything outside
// [a-z0-9] and whitespace with a space and collapses runs of whitespace.
// It is idempotent and safe for concurrent use.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	// A new transformer per call: transform.Chain keeps internal state.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			// whitespace and anything else become a single separator
			space = true
		}
	}
	return b.String()
}
