package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zvidmar/inventura/internal/model"
)

// codeAttempts bounds the retry loop when a generated item code collides
// with an existing one.
const codeAttempts = 5

// CreateItem creates a new item with a generated id and code. A nil price
// is stored as NULL and read back as zero.
func CreateItem(ctx context.Context, db *sql.DB, name, location, description, imageURL string, price *float64) (*model.Item, error) {
	id := uuid.NewString()

	var lastErr error
	for range codeAttempts {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("generating item code: %w", err)
		}

		_, err = db.ExecContext(ctx,
			`INSERT INTO items (id, name, location, description, image_url, code, price)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, name, location, nullString(description), nullString(imageURL), code, nullFloat(price),
		)
		if err == nil {
			return GetItem(ctx, db, id)
		}
		if !isCodeConflict(err) {
			return nil, fmt.Errorf("creating item: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("creating item: code collision persisted: %w", lastErr)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, name, location, description, image_url, code, price, sold, payment_received, created_at
		 FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items, newest first.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, location, description, image_url, code, price, sold, payment_received, created_at
		 FROM items ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ItemUpdate holds the mutable item fields for a partial update. Nil fields
// are left unchanged.
type ItemUpdate struct {
	Name            *string
	Location        *string
	Description     *string
	Price           *float64
	Sold            *bool
	PaymentReceived *bool
}

// UpdateItemFields applies a partial update to an item and returns the
// updated row, or nil if the item does not exist. Only fields present in
// the update appear in the statement.
func UpdateItemFields(ctx context.Context, db *sql.DB, id string, update ItemUpdate) (*model.Item, error) {
	// Existence check first, so a missing id is reported as not-found
	// rather than a silent zero-row update.
	existing, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	var fields []string
	var args []any

	if update.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Location != nil {
		fields = append(fields, "location = ?")
		args = append(args, *update.Location)
	}
	if update.Description != nil {
		fields = append(fields, "description = ?")
		args = append(args, nullString(*update.Description))
	}
	if update.Price != nil {
		fields = append(fields, "price = ?")
		args = append(args, *update.Price)
	}
	if update.Sold != nil {
		fields = append(fields, "sold = ?")
		args = append(args, boolToInt(*update.Sold))
	}
	if update.PaymentReceived != nil {
		fields = append(fields, "payment_received = ?")
		args = append(args, boolToInt(*update.PaymentReceived))
	}

	if len(fields) == 0 {
		return existing, nil
	}

	args = append(args, id)
	_, err = db.ExecContext(ctx,
		"UPDATE items SET "+strings.Join(fields, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// ToggleSold flips an item's sold flag and returns the updated row, or nil
// if the item does not exist.
func ToggleSold(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	return toggleFlag(ctx, db, id, "sold")
}

// TogglePayment flips an item's payment-received flag and returns the
// updated row, or nil if the item does not exist.
func TogglePayment(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	return toggleFlag(ctx, db, id, "payment_received")
}

func toggleFlag(ctx context.Context, db *sql.DB, id, column string) (*model.Item, error) {
	// column is one of two fixed names, never user input.
	result, err := db.ExecContext(ctx,
		"UPDATE items SET "+column+" = 1 - "+column+" WHERE id = ?", id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggling %s: %w", column, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("toggling %s: %w", column, err)
	}
	if n == 0 {
		return nil, nil
	}

	return GetItem(ctx, db, id)
}

// DeleteItem permanently removes an item. It reports whether a row was
// actually deleted, so repeated deletes of the same id surface as not-found.
func DeleteItem(ctx context.Context, db *sql.DB, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}

// scanItem scans one item row, coercing nullable columns and stored
// integers into their model types.
func scanItem(scan func(...any) error) (*model.Item, error) {
	item := &model.Item{}
	var description, imageURL sql.NullString
	var price sql.NullFloat64
	var sold, paymentReceived int

	err := scan(&item.ID, &item.Name, &item.Location, &description, &imageURL,
		&item.Code, &price, &sold, &paymentReceived, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.ImageURL = imageURL.String
	item.Price = price.Float64
	item.Sold = sold != 0
	item.PaymentReceived = paymentReceived != 0
	return item, nil
}

// generateCode builds a human-readable item code like INV-MB3K2F9A-X7Q:
// a base-36 timestamp plus a short random suffix.
func generateCode() (string, error) {
	const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	suffix := make([]byte, 3)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		suffix[i] = charset[n.Int64()]
	}

	ts := strings.ToUpper(big.NewInt(time.Now().UnixMilli()).Text(36))
	return fmt.Sprintf("INV-%s-%s", ts, suffix), nil
}

func isCodeConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: items.code")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
