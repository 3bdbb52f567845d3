// Package textutil normalises place names for matching.
//
// Matching is accent- and case-insensitive: "Café Müller" and "cafe muller"
// fold to the same string.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold removes diacritics and case from s.
// Transformers are stateful, so a fresh chain is built per call.
func Fold(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.TrimSpace(stripped))
}

// Tokens folds s and splits it into words.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// MatchesAllPrefixes reports whether every query token is a prefix of at
// least one candidate token.
func MatchesAllPrefixes(queryTokens, candidateTokens []string) bool {
	if len(queryTokens) == 0 {
		return false
	}
	for _, q := range queryTokens {
		found := false
		for _, c := range candidateTokens {
			if strings.HasPrefix(c, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ContainsFolded reports whether values contains target, ignoring case
// and diacritics.
func ContainsFolded(values []string, target string) bool {
	t := Fold(target)
	for _, v := range values {
		if Fold(v) == t {
			return true
		}
	}
	return false
}
