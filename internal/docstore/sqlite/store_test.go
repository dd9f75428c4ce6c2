package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kwanzahq/vendordesk/internal/docstore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestWriteThenRead(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Write(ctx, "companies", "u1", map[string]any{
		"companyName": "Acme Ltd",
		"tin":         "123-456-789",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := store.Read(ctx, "companies", "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.String("companyName") != "Acme Ltd" {
		t.Fatalf("unexpected fields: %v", doc.Fields)
	}
	if doc.CreatedAt.IsZero() {
		t.Fatal("expected store-assigned creation time")
	}
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Read(context.Background(), "companies", "absent")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverwriteReplacesAllFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, "payments", "u1", map[string]any{"paymentMethod": "card", "cardLast4": "4242"}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.Write(ctx, "payments", "u1", map[string]any{"paymentMethod": "cash"}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	doc, err := store.Read(ctx, "payments", "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.String("paymentMethod") != "cash" {
		t.Fatalf("expected cash method, got %v", doc.Fields)
	}
	if _, ok := doc.Fields["cardLast4"]; ok {
		t.Fatal("expected card fields dropped by overwrite")
	}
}

func TestOverwriteReassignsCreationTime(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	at := first
	store.clock = func() time.Time { return at }

	if err := store.Write(ctx, "users", "u1", map[string]any{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	at = second
	if err := store.Write(ctx, "users", "u1", map[string]any{}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	doc, err := store.Read(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !doc.CreatedAt.Equal(second) {
		t.Fatalf("expected reassigned creation time, got %v", doc.CreatedAt)
	}
}

func TestObserveFiresAfterCommittedWrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var seen []docstore.Document
	unsubscribe := store.Observe("users", "u1", func(doc docstore.Document) {
		seen = append(seen, doc)
	})
	defer unsubscribe()

	if err := store.Write(ctx, "users", "u1", map[string]any{"approved": true}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("expected one notification, got %d", len(seen))
	}
	if !seen[0].Bool("approved") {
		t.Fatalf("unexpected notification payload: %v", seen[0].Fields)
	}

	// The notified document must match what a reader would see.
	doc, err := store.Read(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !doc.CreatedAt.Equal(seen[0].CreatedAt) {
		t.Fatalf("notification timestamp %v != stored %v", seen[0].CreatedAt, doc.CreatedAt)
	}
}

func TestDocumentsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Write(ctx, "documents", "u1", map[string]any{"uploaded": false}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	doc, err := reopened.Read(ctx, "documents", "u1")
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if doc.Bool("uploaded") {
		t.Fatalf("unexpected fields after reopen: %v", doc.Fields)
	}
}
