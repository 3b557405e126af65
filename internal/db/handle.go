package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when an operation runs against a closed handle.
var ErrClosed = errors.New("database handle is closed")

// Handle owns the connection to the live database file. All request-scoped
// work goes through View, which holds a shared lock; a restore goes through
// Exclusive, which closes the connection, blocks every other operation while
// the file is swapped out, and reopens it afterwards.
type Handle struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// OpenHandle opens the database at path and wraps it in a Handle.
func OpenHandle(path string) (*Handle, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Handle{path: path, db: db}, nil
}

// Path returns the path of the live database file.
func (h *Handle) Path() string {
	return h.path
}

// View runs fn with the shared database connection under a shared lock.
// It returns ErrClosed if the handle has been closed.
func (h *Handle) View(fn func(db *sql.DB) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.db == nil {
		return ErrClosed
	}
	return fn(h.db)
}

// Snapshot runs fn with the database file path under the shared lock, so
// a file copy taken inside fn cannot race a restore. The connection stays
// open; callers should Checkpoint first if they need the main file to be
// self-consistent.
func (h *Handle) Snapshot(fn func(path string) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.db == nil {
		return ErrClosed
	}
	return fn(h.path)
}

// Checkpoint flushes the write-ahead log into the main database file so
// that a plain file copy of it is self-consistent.
func (h *Handle) Checkpoint(ctx context.Context) error {
	return h.View(func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return fmt.Errorf("checkpointing wal: %w", err)
		}
		return nil
	})
}

// Exclusive closes the connection, runs fn against the database file path
// with no connection open and all other operations blocked, then reopens
// the connection. fn's error is returned to the caller; a reopen failure
// takes precedence, since it leaves the handle unusable.
func (h *Handle) Exclusive(fn func(path string) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return ErrClosed
	}

	if err := h.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	h.db = nil

	fnErr := fn(h.path)

	db, err := Open(h.path)
	if err != nil {
		return fmt.Errorf("reopening database: %w", err)
	}
	h.db = db

	return fnErr
}

// Close closes the underlying connection. The handle cannot be reused.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}
