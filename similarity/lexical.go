package similarity

import (
	"math"

	"github.com/agnivade/levenshtein"
)

// Lexical weights on the four character-level metrics.
const (
	weightLevenshtein = 0.3
	weightBigram      = 0.3
	weightCosine      = 0.2
	weightLCS         = 0.2
)

// Lexical scores two strings on character-level evidence alone:
// normalized Levenshtein similarity, character-bigram Jaccard
// overlap, character-frequency cosine, and longest common
// subsequence ratio. Identical strings score 1, disjoint strings
// near 0. The score is symmetric.
func Lexical(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return weightLevenshtein*levenshteinSim(a, b) +
		weightBigram*bigramJaccard(a, b) +
		weightCosine*charCosine(a, b) +
		weightLCS*lcsRatio(a, b)
}

func levenshteinSim(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	if len(runes) == 1 {
		set[string(runes)] = struct{}{}
		return set
	}
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

func bigramJaccard(a, b string) float64 {
	ba, bb := bigrams(a), bigrams(b)
	inter := 0
	for g := range ba {
		if _, ok := bb[g]; ok {
			inter++
		}
	}
	union := len(ba) + len(bb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func charCosine(a, b string) float64 {
	fa := make(map[rune]float64)
	for _, r := range a {
		fa[r]++
	}
	fb := make(map[rune]float64)
	for _, r := range b {
		fb[r]++
	}

	var dot, na, nb float64
	for r, ca := range fa {
		na += ca * ca
		if cb, ok := fb[r]; ok {
			dot += ca * cb
		}
	}
	for _, cb := range fb {
		nb += cb * cb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// lcsRatio is the longest common subsequence length over the longer
// string's length, computed over runes.
func lcsRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	return float64(prev[len(rb)]) / float64(maxLen)
}
