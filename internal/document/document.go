// Package document holds the legal reference corpus.
//
// Documents are seeded once at startup and read-mostly afterwards.
// Administrative additions replace the whole slice under a mutex so
// concurrent readers never observe a partially updated store.
package document

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateID indicates a document with the same ID already exists.
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrNotFound indicates no document exists with the given ID.
	ErrNotFound = errors.New("document not found")
)

// Document is one legal reference text with its citation metadata.
// Embedding is derived and cached once computed; a nil Embedding means
// the document has not been indexed yet.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Section   string    `json:"section"`
	Article   string    `json:"article,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Source renders the document as a citation line for API responses.
func (d Document) Source() string {
	return d.Title + " - " + d.URL
}

// Store is the in-process document collection.
type Store struct {
	mu   sync.Mutex // guards writers; readers use the snapshot
	docs []Document
	byID map[string]int
}

// NewStore creates a store seeded with the given documents.
// IDs must be unique across the seed set.
func NewStore(seed []Document) (*Store, error) {
	s := &Store{byID: make(map[string]int, len(seed))}
	for _, d := range seed {
		if _, ok := s.byID[d.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		s.byID[d.ID] = len(s.docs)
		s.docs = append(s.docs, d)
	}
	return s, nil
}

// All returns the documents in insertion order. The returned slice is a
// copy; callers may not mutate store contents through it.
func (s *Store) All() []Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Get returns the document with the given ID.
func (s *Store) Get(id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s.docs[i], nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Add appends documents administratively. The document slice is copied
// then swapped so in-flight All() snapshots stay consistent.
func (s *Store) Add(docs ...Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Document, len(s.docs), len(s.docs)+len(docs))
	copy(next, s.docs)
	nextByID := make(map[string]int, len(s.byID)+len(docs))
	for id, i := range s.byID {
		nextByID[id] = i
	}

	for _, d := range docs {
		if _, ok := nextByID[d.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		nextByID[d.ID] = len(next)
		next = append(next, d)
	}

	s.docs = next
	s.byID = nextByID
	return nil
}
