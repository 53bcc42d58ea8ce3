package recommend

import (
	"fmt"
	"math"
)

// Embedding is a fixed-length vector produced by an embedding provider
type Embedding []float32

// Cosine returns the cosine similarity of a and b in [-1, 1].
// It does not assume the inputs are normalized.
func Cosine(a, b Embedding) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0, ErrDegenerateVector
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |sim| slightly past 1
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}

	return float32(sim), nil
}

// Normalize returns a unit-length copy of v
func Normalize(v Embedding) (Embedding, error) {
	n := norm(v)
	if n == 0 {
		return nil, ErrDegenerateVector
	}

	out := make(Embedding, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out, nil
}

// IsNormalized reports whether ‖v‖₂ is within tol of 1
func IsNormalized(v Embedding, tol float64) bool {
	return math.Abs(norm(v)-1) <= tol
}

func norm(v Embedding) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
