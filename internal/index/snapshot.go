package index

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/pravnik0/pravnik/internal/document"
)

// snapshotFile is the on-disk representation of an index generation.
// Vectors ride along inside each document's Embedding field, so loading
// never re-embeds the corpus.
type snapshotFile struct {
	Dimension int
	Docs      []document.Document
}

// SaveSnapshot writes the current index contents to path. The write goes
// through a temp file plus rename and holds a flock so concurrent CLI
// invocations cannot interleave partial writes.
func (idx *Index) SaveSnapshot(path string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking snapshot: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	snap := idx.snap.Load()
	sf := snapshotFile{
		Dimension: idx.embedder.Dimension(),
		Docs:      snap.docs,
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the index contents with a previously saved
// snapshot. Dimension must match the configured embedder.
func (idx *Index) LoadSnapshot(path string) error {
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return fmt.Errorf("locking snapshot: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf snapshotFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}
	if sf.Dimension != idx.embedder.Dimension() {
		return fmt.Errorf("%w: snapshot has %d, index wants %d",
			ErrDimensionMismatch, sf.Dimension, idx.embedder.Dimension())
	}

	next := &snapshot{
		docs: sf.Docs,
		vecs: make([][]float32, len(sf.Docs)),
	}
	for i, d := range sf.Docs {
		if len(d.Embedding) != sf.Dimension {
			return fmt.Errorf("%w: snapshot document %q has %d",
				ErrDimensionMismatch, d.ID, len(d.Embedding))
		}
		next.vecs[i] = d.Embedding
	}

	idx.mu.Lock()
	idx.snap.Store(next)
	idx.mu.Unlock()
	return nil
}
