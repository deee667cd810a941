package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/pkg/crypto"
	"github.com/prn-tf/taskflow/internal/repository"
)

// Login authenticates by exact username and sets the session.
// A stored legacy plaintext password is rewritten to its hash on success.
// Unknown users and wrong passwords both return domain.ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, username, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.users, func(u domain.User) bool { return u.Username == username })

	match := crypto.NoMatch
	if idx >= 0 {
		match = s.hasher.Verify(s.users[idx].Password, password)
	}

	switch match {
	case crypto.MatchHashed:
		s.startSessionLocked(ctx, s.users[idx])
		s.recordLocked(ctx, domain.ActionLogin, "User logged in successfully", username)
		s.metrics.RecordLogin("success")

	case crypto.MatchLegacyPlaintext:
		hashed, err := s.hasher.Hash(password)
		if err != nil {
			// Leave the record unmigrated; the next login retries.
			s.logger.Error().Err(err).Str("username", username).Msg("failed to hash legacy password")
			s.startSessionLocked(ctx, s.users[idx])
			s.recordLocked(ctx, domain.ActionLogin, "User logged in successfully", username)
			s.metrics.RecordLogin("success")
			break
		}
		s.users[idx].Password = hashed
		s.persist(ctx, repository.KeyUsers, s.users)
		s.startSessionLocked(ctx, s.users[idx])
		s.recordLocked(ctx, domain.ActionSecurityUpgrade,
			fmt.Sprintf("Migrated legacy password for %s to hashed storage", username), username)
		s.metrics.RecordLogin("upgraded")
		s.logger.Info().Str("username", username).Msg("legacy password migrated")

	default:
		s.recordLocked(ctx, domain.ActionLoginFailed,
			fmt.Sprintf("Failed login attempt for username: %s", username), domain.SystemActor)
		s.metrics.RecordLogin("failed")
		s.logger.Debug().Str("username", username).Msg("invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	user := *s.session
	return &user, nil
}

func (s *Store) startSessionLocked(ctx context.Context, user domain.User) {
	s.session = &user
	s.persistSessionLocked(ctx)
}

// Logout clears the session. It is a no-op when nobody is logged in.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	username := s.session.Username
	s.recordLocked(ctx, domain.ActionLogout, fmt.Sprintf("User %s logged out", username), username)
	s.session = nil
	s.persistSessionLocked(ctx)
}

// Session returns a copy of the logged-in user, or nil.
func (s *Store) Session() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	user := *s.session
	return &user
}
