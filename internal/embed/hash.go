package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashEmbedder is a deterministic feature-hashing embedder. Each lowercase
// token is hashed into one of Dimension buckets with a hash-derived sign,
// and the accumulated vector is L2-normalized. Texts sharing vocabulary
// land near each other under cosine similarity, which is enough for a
// lexical corpus at seed-set scale and keeps the whole pipeline testable
// offline. A hosted model drops in behind the same interface.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder with the given dimensionality.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 768
	}
	return &HashEmbedder{dim: dim}
}

// Dimension implements Embedder.
func (e *HashEmbedder) Dimension() int { return e.dim }

// Embed implements Embedder. Empty or non-lexical text yields the zero
// vector; the error result is always nil.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)

	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		// Writing to an fnv hash cannot fail.
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()

		bucket := int(sum % uint32(e.dim)) //nolint:gosec // dim is small and positive
		if sum&0x80000000 != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	return normalize(vec), nil
}

// tokenize lowercases and splits on any non-letter, non-digit rune.
// Single-rune tokens are kept: article numbers like "68" matter here.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales vec to unit length in place. The zero vector is
// returned unchanged.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
	return vec
}
