package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/taskflow/internal/repository"
)

// backend implements repository.Backend for SQLite.
type backend struct {
	db *DB
}

// NewBackend creates a new SQLite storage backend.
func NewBackend(db *DB) repository.Backend {
	return &backend{db: db}
}

// Get retrieves a collection by key.
func (b *backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM collections WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get collection %q: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces a collection.
func (b *backend) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO collections (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := b.db.ExecContext(ctx, query, key, value, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to set collection %q: %w", key, err)
	}
	return nil
}

// Delete removes a collection.
func (b *backend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM collections WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", key, err)
	}
	return nil
}

// Ping checks the database connection.
func (b *backend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

// Close closes the database.
func (b *backend) Close() error {
	return b.db.Close()
}
