package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// NewTestHandle creates a file-backed test database in a temporary directory
// and wraps it in a Handle. Use this for tests that exercise backup and
// restore, which need a real file on disk.
func NewTestHandle(t *testing.T) *Handle {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inventura.db")
	h, err := OpenHandle(path)
	if err != nil {
		t.Fatalf("opening test database handle: %v", err)
	}

	if err := h.View(EnsureSchema); err != nil {
		h.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { h.Close() })

	return h
}
