package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Collections loads and saves named JSON collections on a Backend.
type Collections struct {
	backend   Backend
	namespace string
	logger    zerolog.Logger
}

// NewCollections creates a Collections. namespace is prepended to every key
// so that several stores can share one backend.
func NewCollections(backend Backend, namespace string, logger zerolog.Logger) *Collections {
	return &Collections{
		backend:   backend,
		namespace: namespace,
		logger:    logger.With().Str("component", "collections").Logger(),
	}
}

// Backend returns the underlying backend.
func (c *Collections) Backend() Backend {
	return c.backend
}

// Key returns the backend key of a collection.
func (c *Collections) Key(name string) string {
	return c.namespace + name
}

// Load reads a collection. It returns def when the key is absent, when the
// backend fails, or when the stored value cannot be decoded.
func Load[T any](ctx context.Context, c *Collections, name string, def T) T {
	data, err := c.backend.Get(ctx, c.Key(name))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn().Err(err).Str("key", c.Key(name)).Msg("failed to read collection, using default")
		}
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn().Err(err).Str("key", c.Key(name)).Msg("corrupt collection, using default")
		return def
	}
	return v
}

// Save encodes v as JSON and writes it synchronously.
func (c *Collections) Save(ctx context.Context, name string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := c.backend.Set(ctx, c.Key(name), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Remove deletes a collection.
func (c *Collections) Remove(ctx context.Context, name string) error {
	if err := c.backend.Delete(ctx, c.Key(name)); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Encode is the canonical serialization of a collection. Map keys are
// sorted by encoding/json, so equal values always encode to equal bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
