package resolve

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Similarity scores how alike two normalized names are, in [0, 1].
// It takes the best of a direct Levenshtein similarity and a token-sort
// similarity, so "Curry, Stephen" and "Stephen Curry" score 1.0 while
// genuinely different names stay well apart.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	direct := levenshtein.Similarity(a, b, nil)
	sorted := levenshtein.Similarity(tokenSort(a), tokenSort(b), nil)
	if sorted > direct {
		return sorted
	}
	return direct
}

// tokenSort rebuilds a name with its whitespace-separated tokens in
// lexicographic order.
func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
