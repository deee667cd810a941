package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/taskflow/internal/repository"
)

// backend implements repository.Backend for PostgreSQL.
type backend struct {
	db *DB
}

// NewBackend creates a new PostgreSQL storage backend.
func NewBackend(db *DB) repository.Backend {
	return &backend{db: db}
}

// Get retrieves a collection by key.
func (b *backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.Pool.QueryRow(ctx, `SELECT value FROM collections WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := b.db.Pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set collection %q: %w", key, err)
	}
	return nil
}

// Delete removes a collection.
func (b *backend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.Pool.Exec(ctx, `DELETE FROM collections WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", key, err)
	}
	return nil
}

// Ping checks the database connection.
func (b *backend) Ping(ctx context.Context) error {
	return b.db.Ping(ctx)
}

// Close closes the connection pool.
func (b *backend) Close() error {
	return b.db.Close()
}
