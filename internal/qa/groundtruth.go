package qa

import (
	"strings"
)

// GroundTruthMetrics compares OCR output against reference text.
type GroundTruthMetrics struct {
	CharacterErrorRate float64 `json:"character_error_rate"`
	WordErrorRate      float64 `json:"word_error_rate"`
}

// CompareGroundTruth computes character and word error rates of hypothesis
// against reference. Both rates are Levenshtein-ratio based, so minor
// decoding differences produce proportionally small errors.
func CompareGroundTruth(reference, hypothesis string) GroundTruthMetrics {
	return GroundTruthMetrics{
		CharacterErrorRate: 1.0 - charSimilarity(reference, hypothesis),
		WordErrorRate:      1.0 - wordSimilarity(reference, hypothesis),
	}
}

func charSimilarity(a, b string) float64 {
	a = strings.TrimSpace(strings.ToLower(a))
	b = strings.TrimSpace(strings.ToLower(b))
	if a == "" && b == "" {
		return 1
	}
	ra := []rune(a)
	rb := []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1
	}
	return 1.0 - float64(levenshteinRunes(ra, rb))/float64(maxLen)
}

func wordSimilarity(a, b string) float64 {
	aw := strings.Fields(strings.ToLower(a))
	bw := strings.Fields(strings.ToLower(b))
	if len(aw) == 0 && len(bw) == 0 {
		return 1
	}
	maxLen := max(len(aw), len(bw))
	return 1.0 - float64(levenshteinSlices(aw, bw))/float64(maxLen)
}

func levenshteinRunes(ra, rb []rune) int {
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		copy(prev, cur)
	}
	return prev[len(rb)]
}

func levenshteinSlices(a, b []string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		copy(prev, cur)
	}
	return prev[len(b)]
}
