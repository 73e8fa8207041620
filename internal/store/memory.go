package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/thirty-today/internal/digest"
)

var (
	// ErrNotFound is returned when no document has been saved yet.
	ErrNotFound = errors.New("no document persisted")
)

// MemoryStore is a concurrency-safe in-memory holder of the latest document.
type MemoryStore struct {
	mu sync.RWMutex

	doc     digest.Document
	savedAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the held document.
func (s *MemoryStore) Save(_ context.Context, doc digest.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc
	s.savedAt = time.Now().UTC()
	return nil
}

// Load returns the held document.
func (s *MemoryStore) Load(_ context.Context) (digest.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc == nil {
		return nil, ErrNotFound
	}
	return s.doc, nil
}

// SavedAt reports when the held document was stored; zero if never.
func (s *MemoryStore) SavedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savedAt
}
