package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/prn-tf/taskflow/internal/audit"
	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/repository"
)

// Users returns all users, including password digests.
func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneUsers(s.users)
}

// User returns the user with id.
func (s *Store) User(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.userIndexLocked(id)
	if idx < 0 {
		return domain.User{}, false
	}
	return s.users[idx], true
}

// UserName resolves a user ID to its username, or "Unknown" for a dangling reference.
func (s *Store) UserName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return userName(s.users, id)
}

func userName(users []domain.User, id string) string {
	idx := slices.IndexFunc(users, func(u domain.User) bool { return u.ID == id })
	if idx < 0 {
		return UnknownLabel
	}
	return users[idx].Username
}

func (s *Store) userIndexLocked(id string) int {
	return slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id })
}

func (s *Store) usernameTakenLocked(username, exceptID string) bool {
	return slices.ContainsFunc(s.users, func(u domain.User) bool {
		return u.Username == username && u.ID != exceptID
	})
}

// CreateUser hashes the password and appends the user. An empty ID is generated.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := domain.Validate(user); err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = s.newID()
	}
	if s.userIndexLocked(user.ID) >= 0 {
		return domain.User{}, domain.NewDomainError(domain.ErrUserAlreadyExists, "duplicate id", user.ID)
	}
	if s.usernameTakenLocked(user.Username, "") {
		return domain.User{}, domain.NewDomainError(domain.ErrUserAlreadyExists, "duplicate username", user.Username)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed

	s.users = append(s.users, user)
	s.persist(ctx, repository.KeyUsers, s.users)
	s.recordLocked(ctx, domain.ActionUserCreated, fmt.Sprintf("Created user %s as %s", user.Username, user.Role), "")
	s.metrics.RecordMutation("create_user")

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("user created")

	return user, nil
}

// UpdateUser replaces a user. A password that differs from the stored value
// is treated as a new plaintext and hashed. Exactly one audit entry is
// written. Updating an unknown user is a no-op.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	if err := domain.Validate(user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndexLocked(user.ID)
	if idx < 0 {
		return nil
	}
	before := s.users[idx]

	if user.ID == s.superUserID && user.Role != before.Role {
		return domain.NewDomainError(domain.ErrProtectedUser, "role cannot change", user.ID)
	}
	if s.usernameTakenLocked(user.Username, user.ID) {
		return domain.NewDomainError(domain.ErrUserAlreadyExists, "duplicate username", user.Username)
	}

	entry, _ := audit.Evaluate(audit.UserRules, before, user)

	if user.Password != before.Password {
		hashed, err := s.hasher.Hash(user.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hashed
	}

	s.users[idx] = user
	s.persist(ctx, repository.KeyUsers, s.users)

	if s.session != nil && s.session.ID == user.ID {
		s.startSessionLocked(ctx, user)
	}

	s.recordLocked(ctx, entry.Action, entry.Details, "")
	s.metrics.RecordMutation("update_user")
	return nil
}

// DeleteUser removes a user. Project memberships and task assignments that
// reference the user are left in place. Deleting an unknown user is a no-op.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if id == s.superUserID {
		return domain.NewDomainError(domain.ErrProtectedUser, "cannot be deleted", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndexLocked(id)
	if idx < 0 {
		return nil
	}
	user := s.users[idx]

	s.users = slices.Delete(s.users, idx, idx+1)
	s.persist(ctx, repository.KeyUsers, s.users)
	s.recordLocked(ctx, domain.ActionUserDeleted, fmt.Sprintf("Deleted user %s", user.Username), "")
	s.metrics.RecordMutation("delete_user")
	return nil
}
