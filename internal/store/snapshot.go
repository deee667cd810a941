package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/repository"
)

// Snapshot is the full persisted state. Field names match the storage keys.
type Snapshot struct {
	Users         []domain.User         `json:"users"`
	Projects      []domain.Project      `json:"projects"`
	Tasks         []domain.Task         `json:"tasks"`
	Logs          []domain.Log          `json:"logs"`
	CustomReports []domain.CustomReport `json:"customReports"`
	Announcements []domain.Announcement `json:"announcements"`
	Session       *domain.User          `json:"currentSession,omitempty"`
}

// Encode returns the canonical JSON form of the snapshot.
func (snap Snapshot) Encode() ([]byte, error) {
	return repository.Encode(snap)
}

// DecodeSnapshot parses a snapshot produced by Encode.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Users:         cloneUsers(s.users),
		Projects:      cloneProjects(s.projects),
		Tasks:         cloneTasks(s.tasks),
		Logs:          s.audit.Entries(),
		CustomReports: cloneReports(s.reports),
		Announcements: append([]domain.Announcement{}, s.announcements...),
	}
	if s.session != nil {
		session := *s.session
		snap.Session = &session
	}
	return snap
}

// replaceLocked installs snap as the in-memory state, normalizing nil
// collections to empty ones. Caller must hold s.mu.
func (s *Store) replaceLocked(snap Snapshot) {
	s.users = cloneUsers(snap.Users)
	s.projects = cloneProjects(snap.Projects)
	s.tasks = cloneTasks(snap.Tasks)
	s.reports = cloneReports(snap.CustomReports)
	s.announcements = append([]domain.Announcement{}, snap.Announcements...)
	s.audit.Replace(snap.Logs)
	s.session = nil
	if snap.Session != nil {
		session := *snap.Session
		s.session = &session
	}
}

// Restore replaces the whole state with snap and writes every collection.
func (s *Store) Restore(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceLocked(snap)
	s.metrics.RecordMutation("restore")
	s.logger.Info().
		Int("users", len(s.users)).
		Int("projects", len(s.projects)).
		Int("tasks", len(s.tasks)).
		Msg("state restored from snapshot")
	return s.flushLocked(ctx)
}

// Flush writes every collection and returns the combined write errors.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.flushLocked(ctx)
}

func (s *Store) flushLocked(ctx context.Context) error {
	snap := s.snapshotLocked()
	writes := []struct {
		key   string
		value any
	}{
		{repository.KeyUsers, snap.Users},
		{repository.KeyProjects, snap.Projects},
		{repository.KeyTasks, snap.Tasks},
		{repository.KeyLogs, snap.Logs},
		{repository.KeyCustomReports, snap.CustomReports},
		{repository.KeyAnnouncements, snap.Announcements},
	}

	var errs []error
	for _, w := range writes {
		err := s.collections.Save(ctx, w.key, w.value)
		s.metrics.RecordPersist(w.key, err)
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	if snap.Session != nil {
		err = s.collections.Save(ctx, repository.KeySession, snap.Session)
	} else {
		err = s.collections.Remove(ctx, repository.KeySession)
	}
	s.metrics.RecordPersist(repository.KeySession, err)
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func cloneUsers(users []domain.User) []domain.User {
	return append([]domain.User{}, users...)
}

func cloneProjects(projects []domain.Project) []domain.Project {
	out := lo.Map(projects, func(p domain.Project, _ int) domain.Project { return p.Clone() })
	if out == nil {
		out = []domain.Project{}
	}
	return out
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := lo.Map(tasks, func(t domain.Task, _ int) domain.Task { return t.Clone() })
	if out == nil {
		out = []domain.Task{}
	}
	return out
}

func cloneReports(reports []domain.CustomReport) []domain.CustomReport {
	out := lo.Map(reports, func(r domain.CustomReport, _ int) domain.CustomReport { return r.Clone() })
	if out == nil {
		out = []domain.CustomReport{}
	}
	return out
}
