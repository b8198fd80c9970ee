// Package index provides similarity search over embedded documents.
//
// Index is the default in-memory implementation: a linear cosine scan over
// all stored vectors. That is O(n*d) per query, acceptable at seed-set
// scale; PGIndex backs the same contract with pgvector for corpora where
// the scan stops being cheap.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pravnik0/pravnik/internal/document"
	"github.com/pravnik0/pravnik/internal/embed"
)

var (
	// ErrDimensionMismatch indicates a vector of the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNilEmbedder indicates the index was built without an embedder.
	ErrNilEmbedder = errors.New("embedder is required")
)

// Result is one search hit: a document and its cosine similarity to the
// query. Results are transient, recomputed per query, never persisted.
type Result struct {
	Document document.Document
	Score    float64
}

// Source renders the hit as a citation line.
func (r Result) Source() string { return r.Document.Source() }

// snapshot is an immutable generation of the index. Readers load it
// atomically and scan without locks; Add builds a new generation and
// swaps the pointer.
type snapshot struct {
	docs []document.Document
	vecs [][]float32
}

// Index is the in-memory vector index.
type Index struct {
	embedder embed.Embedder
	logger   *slog.Logger

	mu   sync.Mutex // serializes writers only
	snap atomic.Pointer[snapshot]
}

// New creates an empty index over the given embedder.
func New(embedder embed.Embedder, logger *slog.Logger) (*Index, error) {
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	if logger == nil {
		logger = slog.Default()
	}
	idx := &Index{embedder: embedder, logger: logger}
	idx.snap.Store(&snapshot{})
	return idx, nil
}

// Add embeds any document lacking a vector and appends all of them.
// Readers never observe a partially applied batch.
func (idx *Index) Add(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}

	dim := idx.embedder.Dimension()
	vecs := make([][]float32, len(docs))
	for i, d := range docs {
		vec := d.Embedding
		if len(vec) == 0 {
			var err error
			vec, err = idx.embedder.Embed(ctx, d.Content)
			if err != nil {
				return fmt.Errorf("embedding document %q: %w", d.ID, err)
			}
		}
		if len(vec) != dim {
			return fmt.Errorf("%w: document %q has %d, index wants %d",
				ErrDimensionMismatch, d.ID, len(vec), dim)
		}
		docs[i].Embedding = vec
		vecs[i] = vec
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur := idx.snap.Load()
	next := &snapshot{
		docs: make([]document.Document, 0, len(cur.docs)+len(docs)),
		vecs: make([][]float32, 0, len(cur.vecs)+len(vecs)),
	}
	next.docs = append(append(next.docs, cur.docs...), docs...)
	next.vecs = append(append(next.vecs, cur.vecs...), vecs...)
	idx.snap.Store(next)

	idx.logger.Debug("documents indexed", "added", len(docs), "total", len(next.docs))
	return nil
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.snap.Load().docs)
}

// Search returns the topK documents most similar to queryVec in descending
// score order. Ties keep insertion order. topK is clamped to the index
// size; an empty index yields an empty slice, never an error.
func (idx *Index) Search(_ context.Context, queryVec []float32, topK int) ([]Result, error) {
	snap := idx.snap.Load()
	if len(snap.docs) == 0 || topK <= 0 {
		return []Result{}, nil
	}
	if len(queryVec) != idx.embedder.Dimension() {
		return nil, fmt.Errorf("%w: query has %d, index wants %d",
			ErrDimensionMismatch, len(queryVec), idx.embedder.Dimension())
	}

	results := make([]Result, len(snap.docs))
	for i := range snap.docs {
		results[i] = Result{
			Document: snap.docs[i],
			Score:    Cosine(queryVec, snap.vecs[i]),
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// SearchText embeds the query text and searches. An embedding failure is
// returned to the caller, who decides whether to degrade.
func (idx *Index) SearchText(ctx context.Context, query string, topK int) ([]Result, error) {
	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return idx.Search(ctx, vec, topK)
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// or zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
