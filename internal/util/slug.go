// Package util provides general-purpose helpers: URL slug generation
// with Unicode normalization, and sql.Null* conversion utilities.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonSlugChars matches everything that may not appear in a slug.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	// repeatedHyphens matches runs of two or more hyphens.
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a title into a URL-friendly slug: accents are
// decomposed and stripped, the result is lowercased, spaces become
// hyphens, and anything outside [a-z0-9-] is removed.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ := transform.String(t, title)

	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = repeatedHyphens.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// IsNumeric reports whether s is a non-empty string of ASCII digits.
// Used for the legacy menu-by-ID URL fallback.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
