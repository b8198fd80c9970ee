package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pravnik0/pravnik/internal/document"
	"github.com/pravnik0/pravnik/internal/embed"
)

// PGIndex stores document vectors in Postgres with pgvector and delegates
// similarity ranking to the database. It serves the same contract as the
// in-memory Index for corpora that outgrow a per-request linear scan; the
// tradeoff is a network round trip per query and an external dependency.
type PGIndex struct {
	pool     *pgxpool.Pool
	embedder embed.Embedder
	logger   *slog.Logger
}

// NewPGIndex creates a pgvector-backed index. The documents table must
// exist (see db/migrations).
func NewPGIndex(pool *pgxpool.Pool, embedder embed.Embedder, logger *slog.Logger) (*PGIndex, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PGIndex{pool: pool, embedder: embedder, logger: logger}, nil
}

// Add embeds documents lacking vectors and upserts them by ID.
func (idx *PGIndex) Add(ctx context.Context, docs []document.Document) error {
	dim := idx.embedder.Dimension()
	for _, d := range docs {
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

		_, err := idx.pool.Exec(ctx, `
			INSERT INTO documents (id, title, content, url, section, article, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				content = EXCLUDED.content,
				url = EXCLUDED.url,
				section = EXCLUDED.section,
				article = EXCLUDED.article,
				embedding = EXCLUDED.embedding`,
			d.ID, d.Title, d.Content, d.URL, d.Section, d.Article,
			pgvector.NewVector(vec))
		if err != nil {
			return fmt.Errorf("upserting document %q: %w", d.ID, err)
		}
	}
	return nil
}

// Len returns the number of stored documents.
func (idx *PGIndex) Len(ctx context.Context) (int, error) {
	var n int
	if err := idx.pool.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Search ranks documents by cosine similarity to queryVec. Ordering ties
// break on insertion order (seq column) to match the in-memory index.
func (idx *PGIndex) Search(ctx context.Context, queryVec []float32, topK int) ([]Result, error) {
	if topK <= 0 {
		return []Result{}, nil
	}
	if len(queryVec) != idx.embedder.Dimension() {
		return nil, fmt.Errorf("%w: query has %d, index wants %d",
			ErrDimensionMismatch, len(queryVec), idx.embedder.Dimension())
	}

	rows, err := idx.pool.Query(ctx, `
		SELECT id, title, content, url, section, article,
		       1 - (embedding <=> $1) AS similarity
		FROM documents
		ORDER BY similarity DESC, seq ASC
		LIMIT $2`,
		pgvector.NewVector(queryVec), topK)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Document.ID, &r.Document.Title, &r.Document.Content,
			&r.Document.URL, &r.Document.Section, &r.Document.Article, &r.Score); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	return results, nil
}

// SearchText embeds the query text and searches.
func (idx *PGIndex) SearchText(ctx context.Context, query string, topK int) ([]Result, error) {
	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return idx.Search(ctx, vec, topK)
}
