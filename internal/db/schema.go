package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Price is intentionally unconstrained
// here: value validation happens at the HTTP boundary, where the policy is
// configurable.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    location         TEXT NOT NULL,
    description      TEXT,
    image_url        TEXT,
    code             TEXT NOT NULL UNIQUE,
    price            REAL,
    sold             INTEGER NOT NULL DEFAULT 0,
    payment_received INTEGER NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_sold ON items(sold);
CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
