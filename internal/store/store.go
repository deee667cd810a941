// Package store implements the Task Flow domain store: the single state
// container holding users, projects, tasks, custom reports, announcements,
// the audit log and the current session.
//
// Every mutation updates the in-memory collections, writes each affected
// collection through repository.Collections and appends an audit entry.
// Write failures are logged and counted but never returned; in-memory state
// stays authoritative.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/taskflow/internal/audit"
	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/metrics"
	"github.com/prn-tf/taskflow/internal/pkg/crypto"
	"github.com/prn-tf/taskflow/internal/repository"
)

// DefaultSuperUserID is the seeded administrator that cannot be deleted or re-roled.
const DefaultSuperUserID = "u1"

// Options configures a Store.
type Options struct {
	// Collections is the persistence layer. Required.
	Collections *repository.Collections

	// Hasher defaults to crypto.SHA256Hasher.
	Hasher crypto.PasswordHasher

	// Metrics may be nil.
	Metrics *metrics.Metrics

	Logger zerolog.Logger

	// SuperUserID defaults to DefaultSuperUserID.
	SuperUserID string

	// Seed loads the demo users, projects and tasks for absent collections.
	Seed bool

	// Clock and NewID default to time.Now and uuid.NewString.
	Clock func() time.Time
	NewID func() string
}

// Store is the domain store. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	collections *repository.Collections
	hasher      crypto.PasswordHasher
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	superUserID string
	now         func() time.Time
	newID       func() string

	users         []domain.User
	projects      []domain.Project
	tasks         []domain.Task
	reports       []domain.CustomReport
	announcements []domain.Announcement
	audit         *audit.Logger
	session       *domain.User
}

// New creates a Store and hydrates it from the collection store.
// Absent or corrupt collections fall back to their defaults.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Collections == nil {
		return nil, errors.New("store: collections are required")
	}
	if opts.Hasher == nil {
		opts.Hasher = crypto.SHA256Hasher{}
	}
	if opts.SuperUserID == "" {
		opts.SuperUserID = DefaultSuperUserID
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	s := &Store{
		collections: opts.Collections,
		hasher:      opts.Hasher,
		metrics:     opts.Metrics,
		logger:      opts.Logger.With().Str("component", "store").Logger(),
		superUserID: opts.SuperUserID,
		now:         opts.Clock,
		newID:       opts.NewID,
	}

	var seed Snapshot
	if opts.Seed {
		seed = SeedData()
	}

	c := opts.Collections
	snap := Snapshot{
		Users:         repository.Load(ctx, c, repository.KeyUsers, seed.Users),
		Projects:      repository.Load(ctx, c, repository.KeyProjects, seed.Projects),
		Tasks:         repository.Load(ctx, c, repository.KeyTasks, seed.Tasks),
		Logs:          repository.Load(ctx, c, repository.KeyLogs, []domain.Log(nil)),
		CustomReports: repository.Load(ctx, c, repository.KeyCustomReports, []domain.CustomReport(nil)),
		Announcements: repository.Load(ctx, c, repository.KeyAnnouncements, []domain.Announcement(nil)),
		Session:       repository.Load(ctx, c, repository.KeySession, (*domain.User)(nil)),
	}
	s.audit = audit.NewLogger(nil, audit.WithClock(s.now), audit.WithIDGenerator(s.newID))
	s.replaceLocked(snap)

	s.logger.Info().
		Int("users", len(s.users)).
		Int("projects", len(s.projects)).
		Int("tasks", len(s.tasks)).
		Int("logs", s.audit.Len()).
		Bool("session", s.session != nil).
		Msg("store hydrated")

	return s, nil
}

// SuperUserID returns the protected user's ID.
func (s *Store) SuperUserID() string {
	return s.superUserID
}

// Ping checks the persistence backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.collections.Backend().Ping(ctx)
}

// actorLocked returns the session username, or the system actor.
// Caller must hold s.mu.
func (s *Store) actorLocked() string {
	if s.session == nil {
		return domain.SystemActor
	}
	return s.session.Username
}

// persist writes one collection. Failures are logged and counted only.
func (s *Store) persist(ctx context.Context, key string, v any) {
	err := s.collections.Save(ctx, key, v)
	s.metrics.RecordPersist(key, err)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to persist collection")
	}
}

// persistSessionLocked writes or removes the session pointer.
// Caller must hold s.mu.
func (s *Store) persistSessionLocked(ctx context.Context) {
	if s.session != nil {
		s.persist(ctx, repository.KeySession, s.session)
		return
	}
	err := s.collections.Remove(ctx, repository.KeySession)
	s.metrics.RecordPersist(repository.KeySession, err)
	if err != nil {
		s.logger.Error().Err(err).Str("key", repository.KeySession).Msg("failed to remove session")
	}
}

// recordLocked appends an audit entry and writes the log collection.
// An empty performedBy is attributed to the current actor.
// Caller must hold s.mu.
func (s *Store) recordLocked(ctx context.Context, action, details, performedBy string) domain.Log {
	if performedBy == "" {
		performedBy = s.actorLocked()
	}
	entry := s.audit.Record(action, details, performedBy)
	s.metrics.RecordAudit(action)
	s.persist(ctx, repository.KeyLogs, s.audit.Entries())
	return entry
}

// Record appends a free-form audit entry attributed to the current session.
func (s *Store) Record(ctx context.Context, action, details string) domain.Log {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recordLocked(ctx, action, details, "")
}

// Logs returns the audit log, newest first.
func (s *Store) Logs() []domain.Log {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.audit.Entries()
}
