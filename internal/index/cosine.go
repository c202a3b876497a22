package index

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch indicates two vectors of different lengths were
// compared. Differing dimensionality means the vectors came from different
// embedding model generations; silently truncating would produce
// meaningless scores, so it is a hard error.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// epsilon keeps the cosine denominator away from zero for empty or
// all-zero vectors.
const epsilon = 1e-9

// Cosine returns the cosine similarity of a and b, in roughly [-1, 1].
func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	return float32(dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon)), nil
}
