// Package embed maps text to fixed-length vectors for similarity search.
//
// Two implementations share one contract: HashEmbedder is a deterministic
// local function used by default and in tests, GeminiEmbedder calls the
// hosted embedding model. Callers select one via configuration and depend
// only on the Embedder interface.
package embed

import "context"

// Embedder converts text into a fixed-length vector. Implementations must
// be pure with respect to the text: identical input yields an identical
// vector, independent of call order or process restarts.
type Embedder interface {
	// Embed returns the vector for text. Text that cannot be processed
	// yields the zero vector rather than an error so retrieval degrades
	// instead of aborting the request.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the constant output vector length.
	Dimension() int
}
