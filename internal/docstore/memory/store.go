// Package memory provides a map-backed document store for tests and local
// development. It honors the same overwrite and observe semantics as the
// hosted adapters.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/kwanzahq/vendordesk/internal/docstore"
)

// Store is an in-memory docstore.Store.
type Store struct {
	mu       sync.Mutex
	docs     map[string]map[string]docstore.Document
	watchers *docstore.Watchers
	clock    func() time.Time

	// WriteErr, when set, fails every write. Used to exercise failure paths.
	WriteErr error
}

var _ docstore.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		docs:     make(map[string]map[string]docstore.Document),
		watchers: docstore.NewWatchers(),
		clock:    time.Now,
	}
}

// NewWithClock returns a store with an injected clock for deterministic
// timestamps.
func NewWithClock(clock func() time.Time) *Store {
	s := New()
	s.clock = clock
	return s
}

// Write implements docstore.Store.
func (s *Store) Write(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.WriteErr != nil {
		err := s.WriteErr
		s.mu.Unlock()
		return err
	}
	doc := docstore.Document{
		Fields:    maps.Clone(fields),
		CreatedAt: s.clock().UTC(),
	}
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]docstore.Document)
	}
	s.docs[collection][id] = doc
	s.mu.Unlock()

	s.watchers.Notify(collection, id, doc)
	return nil
}

// Read implements docstore.Store.
func (s *Store) Read(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{Fields: maps.Clone(doc.Fields), CreatedAt: doc.CreatedAt}, nil
}

// Observe implements docstore.Store.
func (s *Store) Observe(collection, id string, fn func(docstore.Document)) (unsubscribe func()) {
	return s.watchers.Add(collection, id, fn)
}

// Len reports the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}
