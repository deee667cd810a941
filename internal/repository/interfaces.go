// Package repository defines the durable key-value storage used to persist
// the store's collections. Each collection is a single JSON document stored
// under a well-known key, so any backend that can get, set and delete a byte
// value by key can hold the whole application state.
package repository

import "context"

// =============================================================================
// Backend
// =============================================================================

// Backend defines the interface for durable key-value storage.
// Implementations exist for SQLite, PostgreSQL, Redis, S3 and memory.
type Backend interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value, replacing any previous one.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// =============================================================================
// Collection Keys
// =============================================================================

// Storage keys, one per persisted collection.
const (
	KeyUsers         = "users"
	KeyProjects      = "projects"
	KeyTasks         = "tasks"
	KeyLogs          = "logs"
	KeyCustomReports = "customReports"
	KeyAnnouncements = "announcements"

	// KeySession holds the current session and is absent while logged out.
	KeySession = "currentSession"
)

// AllKeys lists every key in the storage layout.
var AllKeys = []string{
	KeyUsers,
	KeyProjects,
	KeyTasks,
	KeyLogs,
	KeyCustomReports,
	KeyAnnouncements,
	KeySession,
}
