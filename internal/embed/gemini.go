package embed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"google.golang.org/genai"
)

// GeminiEmbedder embeds text with the hosted Gemini embedding model via a
// Genkit ai.Embedder. gemini-embedding-001 supports truncation to the
// configured dimensionality (Matryoshka representation), so output length
// matches the hash embedder and the vector schema.
type GeminiEmbedder struct {
	embedder ai.Embedder
	dim      int
	logger   *slog.Logger
}

// NewGeminiEmbedder wraps a Genkit embedder. dim must match the dimension
// used everywhere else in the index.
func NewGeminiEmbedder(embedder ai.Embedder, dim int, logger *slog.Logger) (*GeminiEmbedder, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiEmbedder{embedder: embedder, dim: dim, logger: logger}, nil
}

// Dimension implements Embedder.
func (e *GeminiEmbedder) Dimension() int { return e.dim }

// Embed implements Embedder.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return make([]float32, e.dim), nil
	}

	dim := int32(e.dim) //nolint:gosec // validated positive and small
	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(text, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	vec := resp.Embeddings[0].Embedding
	if len(vec) != e.dim {
		return nil, fmt.Errorf("embedding dimension %d, want %d", len(vec), e.dim)
	}
	// Truncated embeddings are not renormalized by the API.
	return normalize(vec), nil
}
