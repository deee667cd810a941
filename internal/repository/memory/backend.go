// Package memory provides an in-memory storage backend.
// This is suitable for tests and throwaway instances; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/prn-tf/taskflow/internal/repository"
)

// Backend implements repository.Backend using in-memory storage.
type Backend struct {
	mu     sync.RWMutex
	items  map[string][]byte
	closed bool
}

// NewBackend creates a new in-memory backend.
func NewBackend() *Backend {
	return &Backend{
		items: make(map[string][]byte),
	}
}

// Get retrieves a value by key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	value, exists := b.items[key]
	if !exists {
		return nil, repository.ErrNotFound
	}

	// Return a copy to prevent mutation.
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Set stores a value.
func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return repository.ErrBackendUnavailable
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	b.items[key] = valueCopy
	return nil
}

// Delete removes a value by key.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.items, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.items))
	for k := range b.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ping always succeeds until the backend is closed.
func (b *Backend) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return repository.ErrBackendUnavailable
	}
	return ctx.Err()
}

// Close marks the backend closed; later writes fail.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// Ensure Backend implements repository.Backend.
var _ repository.Backend = (*Backend)(nil)
