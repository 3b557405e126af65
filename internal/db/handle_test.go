package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
)

func TestHandleView(t *testing.T) {
	h := NewTestHandle(t)

	var n int
	err := h.View(func(db *sql.DB) error {
		return db.QueryRow("SELECT COUNT(*) FROM items").Scan(&n)
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty items table, got %d rows", n)
	}
}

func TestHandleExclusiveReopens(t *testing.T) {
	h := NewTestHandle(t)
	ctx := context.Background()

	err := h.View(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO items (id, name, location, code) VALUES ('a', 'Lamp', 'Shelf', 'INV-1')`)
		return err
	})
	if err != nil {
		t.Fatalf("inserting: %v", err)
	}

	// During Exclusive the connection is closed; the file can be touched
	// freely. Afterwards the handle must be usable again.
	err = h.Exclusive(func(path string) error {
		if _, err := os.Stat(path); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Exclusive: %v", err)
	}

	var name string
	err = h.View(func(db *sql.DB) error {
		return db.QueryRow("SELECT name FROM items WHERE id = 'a'").Scan(&name)
	})
	if err != nil {
		t.Fatalf("View after Exclusive: %v", err)
	}
	if name != "Lamp" {
		t.Errorf("expected data to survive Exclusive, got %q", name)
	}
}

func TestHandleExclusivePropagatesError(t *testing.T) {
	h := NewTestHandle(t)

	sentinel := errors.New("swap failed")
	err := h.Exclusive(func(string) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("expected fn error back, got %v", err)
	}

	// Handle still reopened despite the error.
	if err := h.View(func(db *sql.DB) error { return db.Ping() }); err != nil {
		t.Errorf("expected handle usable after failed Exclusive, got %v", err)
	}
}

func TestHandleClosed(t *testing.T) {
	h := NewTestHandle(t)
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	err := h.View(func(*sql.DB) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from View, got %v", err)
	}
	err = h.Exclusive(func(string) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Exclusive, got %v", err)
	}
	// Closing again is a no-op.
	if err := h.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestHandleCheckpoint(t *testing.T) {
	h := NewTestHandle(t)

	if err := h.Checkpoint(context.Background()); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
}
