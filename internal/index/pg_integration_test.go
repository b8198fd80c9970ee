package index_test

import (
	"context"
	"testing"

	"github.com/pravnik0/pravnik/internal/document"
	"github.com/pravnik0/pravnik/internal/embed"
	"github.com/pravnik0/pravnik/internal/index"
	"github.com/pravnik0/pravnik/internal/testutil"
)

func TestPGIndexSearch(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	embedder := embed.NewHashEmbedder(768)
	idx, err := index.NewPGIndex(db.Pool, embedder, testutil.QuietLogger())
	if err != nil {
		t.Fatalf("NewPGIndex: %v", err)
	}

	if err := idx.Add(ctx, document.Seed()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	n, err := idx.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != len(document.Seed()) {
		t.Fatalf("Len = %d, want %d", n, len(document.Seed()))
	}

	// Upsert by ID must not duplicate rows.
	if err := idx.Add(ctx, document.Seed()); err != nil {
		t.Fatalf("Add(again): %v", err)
	}
	n, err = idx.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != len(document.Seed()) {
		t.Errorf("upsert duplicated rows: Len = %d", n)
	}

	results, err := idx.SearchText(ctx, "How many days of annual leave am I entitled to?", 5)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	if results[0].Document.ID != "labor-law-art-68" {
		t.Errorf("top result = %q, want the annual leave article", results[0].Document.ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Errorf("results out of order at %d", i)
		}
	}
}
