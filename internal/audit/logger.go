// Package audit records the append-only activity log and derives
// human-readable change descriptions from before/after snapshots.
package audit

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/taskflow/internal/domain"
)

// Logger holds audit entries newest first.
// It is not safe for concurrent use; the store serializes access.
type Logger struct {
	entries []domain.Log
	now     func() time.Time
	newID   func() string
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithIDGenerator sets the entry ID source.
func WithIDGenerator(newID func() string) Option {
	return func(l *Logger) { l.newID = newID }
}

// NewLogger creates a Logger seeded with existing entries (newest first).
func NewLogger(entries []domain.Log, opts ...Option) *Logger {
	l := &Logger{
		entries: slices.Clone(entries),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	if l.entries == nil {
		l.entries = []domain.Log{}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record prepends an entry and returns it.
func (l *Logger) Record(action, details, performedBy string) domain.Log {
	if performedBy == "" {
		performedBy = domain.SystemActor
	}
	entry := domain.Log{
		ID:          l.newID(),
		Timestamp:   l.now().UTC(),
		Action:      action,
		Details:     details,
		PerformedBy: performedBy,
	}
	l.entries = slices.Insert(l.entries, 0, entry)
	return entry
}

// Entries returns a copy of all entries, newest first.
func (l *Logger) Entries() []domain.Log {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *Logger) Len() int {
	return len(l.entries)
}

// Replace swaps the entry list wholesale. Used when restoring a snapshot.
func (l *Logger) Replace(entries []domain.Log) {
	l.entries = slices.Clone(entries)
	if l.entries == nil {
		l.entries = []domain.Log{}
	}
}
