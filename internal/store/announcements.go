package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/repository"
)

// Announcements returns all announcements, newest first.
func (s *Store) Announcements() []domain.Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Announcement{}, s.announcements...)
}

// CreateAnnouncement prepends an announcement by the session user.
func (s *Store) CreateAnnouncement(ctx context.Context, title, content string) (domain.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.Announcement{}, domain.ErrNoSession
	}

	ann := domain.Announcement{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		CreatedAt: s.now(),
		CreatedBy: s.session.Username,
	}
	if err := domain.Validate(ann); err != nil {
		return domain.Announcement{}, err
	}

	s.announcements = slices.Insert(s.announcements, 0, ann)
	s.persist(ctx, repository.KeyAnnouncements, s.announcements)
	s.recordLocked(ctx, domain.ActionNewsPosted, fmt.Sprintf("Posted announcement: %s", title), "")
	s.metrics.RecordMutation("create_announcement")

	return ann, nil
}

// DeleteAnnouncement removes an announcement. No session is required.
// Deleting an unknown announcement is a no-op.
func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.announcements, func(a domain.Announcement) bool { return a.ID == id })
	if idx < 0 {
		return nil
	}

	s.announcements = slices.Delete(s.announcements, idx, idx+1)
	s.persist(ctx, repository.KeyAnnouncements, s.announcements)
	s.recordLocked(ctx, domain.ActionNewsDeleted, fmt.Sprintf("Deleted announcement ID: %s", id), "")
	s.metrics.RecordMutation("delete_announcement")
	return nil
}
