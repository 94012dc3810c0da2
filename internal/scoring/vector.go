// Package scoring computes pairwise compatibility scores between attendee profiles.
package scoring

import "math"

// CosineSimilarity computes the cosine similarity between two embedding
// vectors, in [-1, 1]. It returns exactly 0 when either vector is absent,
// the lengths differ, or either vector has zero magnitude: a "no signal"
// result must never crash ranking.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
