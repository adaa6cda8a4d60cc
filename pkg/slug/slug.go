package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from name. Accents are stripped, so
// "Crème Brûlée Mugs" becomes "creme-brulee-mugs".
func Generate(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	s := strings.ToLower(strings.TrimSpace(folded))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
