package booking

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// NormalizeCity turns a user supplied city into the token used in search
// URLs: diacritics stripped, lowercased, runs of non-word characters
// replaced by a single hyphen. It is idempotent.
func NormalizeCity(city string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, city)
	if err != nil {
		s = city
	}
	s = nonWord.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}
