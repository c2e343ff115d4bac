package services

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity compares two sparse label->weight vectors. The vectors are
// projected onto the union of their keys in sorted order before taking the
// dot product, so map iteration order never affects the result. Returns 0
// when either vector has zero magnitude.
func CosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	union := make([]string, 0, len(keys))
	for k := range keys {
		union = append(union, k)
	}
	sort.Strings(union)

	va := make([]float64, len(union))
	vb := make([]float64, len(union))
	for i, k := range union {
		va[i] = a[k]
		vb[i] = b[k]
	}

	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 {
		return 0
	}

	return floats.Dot(va, vb) / (normA * normB)
}

// NormalizeScores rescales raw scores to [0, 1] by min-max. When all scores
// are equal every entry maps to 0.5 so no item is artificially favored.
func NormalizeScores(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	normalized := make([]float64, len(scores))
	if max == min {
		for i := range normalized {
			normalized[i] = 0.5
		}
		return normalized
	}

	for i, s := range scores {
		normalized[i] = (s - min) / (max - min)
	}
	return normalized
}

// DeriveConfidence maps a score and the amount of supporting evidence to a
// confidence value. Each reason adds 0.1 up to a 0.3 bonus.
func DeriveConfidence(score float64, reasonCount int) float64 {
	base := score
	if base > 1 {
		base = 1
	}
	bonus := 0.1 * float64(reasonCount)
	if bonus > 0.3 {
		bonus = 0.3
	}
	confidence := base + bonus
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
