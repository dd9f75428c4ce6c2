// Package docstore defines the boundary to the external keyed-document
// database. Documents are addressed by (collection, id); a write is a full
// overwrite with a store-assigned creation timestamp.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested document is missing.
var ErrNotFound = errors.New("document not found")

// Document is a stored record with its store-assigned creation time.
type Document struct {
	Fields    map[string]any
	CreatedAt time.Time
}

// Bool reads a boolean field, returning false when absent or mistyped.
func (d Document) Bool(key string) bool {
	value, ok := d.Fields[key].(bool)
	return ok && value
}

// String reads a string field, returning "" when absent or mistyped.
func (d Document) String(key string) string {
	value, _ := d.Fields[key].(string)
	return value
}

// Store persists and observes documents.
type Store interface {
	// Write replaces the document at (collection, id) with fields, assigning
	// a fresh creation timestamp. Last writer wins; there is no field merge.
	Write(ctx context.Context, collection, id string, fields map[string]any) error

	// Read returns the document at (collection, id), or ErrNotFound.
	Read(ctx context.Context, collection, id string) (Document, error)

	// Observe invokes fn after every write to (collection, id) until the
	// returned unsubscribe is called. fn runs zero or more times; unsubscribe
	// is idempotent.
	Observe(collection, id string, fn func(Document)) (unsubscribe func())
}
