// Package normalize provides string normalization for matching and sorting.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes characters and drops combining marks, so
// "Björk" folds to "Bjork".
//
//nolint:gochecknoglobals // Stateless transformer chain, safe to share.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold strips diacritics from s. On transform failure the input is
// returned unchanged rather than partially folded.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// Key reduces s to a comparison key: diacritics stripped, lowercased,
// punctuation removed, whitespace collapsed to single spaces. Two strings
// with equal keys are considered the same name for matching purposes.
func Key(s string) string {
	s = strings.ToLower(Fold(sanitize(s)))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// articles that move to the end of a sort name. Lowercase, matched
// case-insensitively against the first word.
//
//nolint:gochecknoglobals // Static lookup table.
var articles = map[string]bool{
	"the": true,
	"a":   true,
	"an":  true,
}

// SortName derives a sort-friendly name by moving a leading definite or
// indefinite article to the end: "The Beatles" -> "Beatles, The".
func SortName(name string) string {
	trimmed := strings.TrimSpace(sanitize(name))

	first, rest, found := strings.Cut(trimmed, " ")
	if !found || !articles[strings.ToLower(first)] {
		return trimmed
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return trimmed
	}
	return rest + ", " + first
}

// sanitize removes null bytes, which some tag parsers leave in strings
// and which break both SQLite and JSON encoding.
func sanitize(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}

// Sanitize is the exported form of sanitize for callers storing raw tag
// values.
func Sanitize(s string) string {
	return sanitize(s)
}
