// Package normalize canonicalizes free-text transaction descriptions for
// keyword matching.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChain upper-cases with full Unicode case mapping (so "ß" becomes
// "SS"), decomposes accented characters, drops combining marks and then
// drops whatever non-ASCII runes remain.
func foldChain() transform.Transformer {
	return transform.Chain(
		cases.Upper(language.Und),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
}

// Normalize uppercases s, strips diacritics and non-ASCII runes, and trims
// surrounding whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	folded, _, err := transform.String(foldChain(), s)
	if err != nil {
		// Not reachable for these transformers; fall back to the raw text.
		folded = s
	}
	return strings.TrimSpace(strings.ToUpper(folded))
}

// Value normalizes an arbitrary cell value. nil yields "".
func Value(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(x)
	case *string:
		if x == nil {
			return ""
		}
		return Normalize(*x)
	case fmt.Stringer:
		return Normalize(x.String())
	default:
		return Normalize(fmt.Sprint(x))
	}
}
