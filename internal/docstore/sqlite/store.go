// Package sqlite implements the document store over a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kwanzahq/vendordesk/internal/docstore"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	fields     TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (collection, doc_id)
);
`

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store implements docstore.Store over SQLite.
//
// A single SQLite file backs all collections so every onboarding write shares
// the same visibility boundary. Observe notifications are in-process: the
// store assumes it is the only writer to its file.
type Store struct {
	sqlDB    *sql.DB
	watchers *docstore.Watchers
	clock    func() time.Time
}

var _ docstore.Store = (*Store)(nil)

// Open opens a document store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{
		sqlDB:    sqlDB,
		watchers: docstore.NewWatchers(),
		clock:    time.Now,
	}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Write implements docstore.Store. The whole row is replaced, including the
// creation timestamp, so resubmission never accretes stale fields.
func (s *Store) Write(ctx context.Context, collection, id string, fields map[string]any) error {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document fields: %w", err)
	}
	createdAt := s.clock().UTC()

	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO documents (collection, doc_id, fields, created_at)
		VALUES (?1, ?2, ?3, ?4)
		ON CONFLICT (collection, doc_id) DO UPDATE SET
			fields = excluded.fields,
			created_at = excluded.created_at;
	`, collection, id, string(encoded), toMillis(createdAt))
	if err != nil {
		return fmt.Errorf("write document %s/%s: %w", collection, id, err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return fmt.Errorf("decode document fields: %w", err)
	}
	s.watchers.Notify(collection, id, docstore.Document{Fields: decoded, CreatedAt: createdAt})
	return nil
}

// Read implements docstore.Store.
func (s *Store) Read(ctx context.Context, collection, id string) (docstore.Document, error) {
	var encoded string
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx, `
		SELECT fields, created_at FROM documents
		WHERE collection = ?1 AND doc_id = ?2;
	`, collection, id).Scan(&encoded, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("read document %s/%s: %w", collection, id, err)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(encoded), &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return docstore.Document{Fields: fields, CreatedAt: fromMillis(createdAt)}, nil
}

// Observe implements docstore.Store.
func (s *Store) Observe(collection, id string, fn func(docstore.Document)) (unsubscribe func()) {
	return s.watchers.Add(collection, id, fn)
}
