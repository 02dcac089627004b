// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import "math"

// cosine returns the cosine similarity of two vectors in [-1, 1]. Vectors
// of different lengths or zero magnitude score 0 rather than erroring; a
// mismatched record simply cannot match the query.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
