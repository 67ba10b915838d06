// Package embedding provides deterministic text embeddings for similarity
// retrieval. Vectors come from a hashing projection rather than a learned
// model, so equal text always embeds to equal vectors across processes.
package embedding

import "math"

// Vector is a dense embedding of fixed dimension.
type Vector []float64

// Cosine returns the cosine similarity of two vectors. If either vector has
// zero norm the similarity is 0.
func Cosine(a, b Vector) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}

	var na, nb float64
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}

	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
