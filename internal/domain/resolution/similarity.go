// Package resolution decides which extracted fiscal identifier belongs to the
// tenant (company) and which to the counterparty (partner).
package resolution

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/fiscal"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

// SimilarityFunc returns a ratio in [0, 1]; 1 means identical
type SimilarityFunc func(a, b string) float64

// Similarity algorithm names accepted by SimilarityByName
const (
	AlgorithmLevenshtein = "levenshtein"
	AlgorithmSequence    = "sequence"
)

// SimilarityByName returns the similarity function registered under name
func SimilarityByName(name string) (SimilarityFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AlgorithmLevenshtein:
		return LevenshteinRatio, nil
	case AlgorithmSequence:
		return SequenceRatio, nil
	}
	return nil, fmt.Errorf("%w: unknown similarity algorithm %q", shared.ErrInvalidInput, name)
}

// LevenshteinRatio is 1 - editDistance/maxLen, counted in runes. Two empty
// strings are identical.
func LevenshteinRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	d := levenshteinDistance(ra, rb)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(d)/float64(maxLen)
}

func levenshteinDistance(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// SequenceRatio is the Ratcliff/Obershelp ratio 2M/T computed over characters
func SequenceRatio(a, b string) float64 {
	m := difflib.NewMatcherWithJunk(strings.Split(a, ""), strings.Split(b, ""), false, nil)
	return m.Ratio()
}

// canonicalKey is the form compared against the known identifiers and the
// company: folded, separators removed, upper-cased, country prefix stripped.
func canonicalKey(value string) string {
	return fiscal.StripCountryPrefix(fiscal.Normalize(value))
}

// displayKey keeps the separators so that two spellings of the same number
// found in one document stay distinguishable.
func displayKey(value string) string {
	s := strings.ToUpper(fiscal.FoldText(strings.TrimSpace(value)))
	country, national := fiscal.SplitCountryPrefix(s)
	if country == "" {
		return s
	}
	return strings.TrimLeft(national, "-./ ")
}
