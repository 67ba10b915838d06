package embedding

import "hash/fnv"

// DefaultDims is the projection dimension used when none is configured.
const DefaultDims = 128

// HashingEmbedder projects text into a fixed-dimension bag-of-tokens vector.
// Each token increments the bucket selected by hashing the token, so the
// embedding is deterministic and needs no vocabulary.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates an embedder with the given dimension.
// Non-positive dims fall back to DefaultDims.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDims
	}
	return &HashingEmbedder{dims: dims}
}

// Dims returns the projection dimension.
func (e *HashingEmbedder) Dims() int {
	return e.dims
}

// Embed converts text into a vector. Tokens are maximal runs of ASCII
// letters and digits, lower-cased before hashing.
func (e *HashingEmbedder) Embed(text string) Vector {
	vec := make(Vector, e.dims)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum64()%uint64(e.dims)] += 1.0
	}
	return vec
}

func tokenize(text string) []string {
	var tokens []string
	var cur []byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			cur = append(cur, c)
		case c >= 'A' && c <= 'Z':
			cur = append(cur, c+('a'-'A'))
		default:
			if len(cur) > 0 {
				tokens = append(tokens, string(cur))
				cur = cur[:0]
			}
		}
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}
	return tokens
}
