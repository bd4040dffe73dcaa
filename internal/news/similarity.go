package news

import (
	"strings"
	"unicode"
)

// normalize lowercases s and deletes punctuation and symbols.
// Deleted runes are not replaced with spaces, so "R$500" becomes "r500".
func normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func tokenSet(s string) map[string]struct{} {
	words := strings.Fields(normalize(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Similarity returns the Jaccard similarity of the normalized word sets of a
// and b, in [0, 1]. Empty input on either side scores 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return jaccard(tokenSet(a), tokenSet(b))
}
