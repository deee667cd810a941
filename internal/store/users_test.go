package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/taskflow/internal/domain"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, withSeed())
	loginAs(t, s, "Aliyan", "1234")

	user, err := s.CreateUser(ctx, domain.User{Username: "mia", Password: "123", Role: domain.RoleProjectManager})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, hash123, user.Password)

	entry := s.Logs()[0]
	assert.Equal(t, domain.ActionUserCreated, entry.Action)
	assert.Equal(t, "Created user mia as Project Manager", entry.Details)
	assert.Equal(t, "Aliyan", entry.PerformedBy)
}

func TestCreateUser_Rejects(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, withSeed())

	_, err := s.CreateUser(ctx, domain.User{Username: "john", Role: domain.RoleMember})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = s.CreateUser(ctx, domain.User{Username: "", Role: domain.RoleMember})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.CreateUser(ctx, domain.User{Username: "x", Role: "Owner"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Len(t, s.Users(), 3)
}

func TestUpdateUser_Precedence(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(u *domain.User)
		action  string
		details string
	}{
		{
			name:    "password and role",
			mutate:  func(u *domain.User) { u.Password = "new"; u.Role = domain.RoleProjectManager },
			action:  domain.ActionPasswordChanged,
			details: "Changed password for john",
		},
		{
			name:    "role",
			mutate:  func(u *domain.User) { u.Role = domain.RoleProjectManager },
			action:  domain.ActionRoleUpdated,
			details: "Changed role for john from Member to Project Manager",
		},
		{
			name:    "profile",
			mutate:  func(u *domain.User) { u.FullName = "Johnny" },
			action:  domain.ActionUserUpdated,
			details: "Updated profile for john",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t, withSeed())
			john, _ := s.User("u3")
			tt.mutate(&john)

			require.NoError(t, s.UpdateUser(ctx, john))

			logs := s.Logs()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.action, logs[0].Action)
			assert.Equal(t, tt.details, logs[0].Details)
		})
	}
}

func TestUpdateUser_HashesNewPassword(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, withSeed())

	john, _ := s.User("u3")
	john.Password = "hunter2"
	require.NoError(t, s.UpdateUser(ctx, john))

	_, err := s.Login(ctx, "john", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionLogin, s.Logs()[0].Action)
}

func TestUpdateUser_RefreshesSession(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, withSeed())
	loginAs(t, s, "sarah", "123")

	sarah, _ := s.User("u2")
	sarah.FullName = "Sarah Connor"
	require.NoError(t, s.UpdateUser(ctx, sarah))

	assert.Equal(t, "Sarah Connor", s.Session().FullName)
}

func TestUpdateUser_Guards(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, withSeed())

	admin, _ := s.User("u1")
	admin.Role = domain.RoleMember
	assert.ErrorIs(t, s.UpdateUser(ctx, admin), domain.ErrProtectedUser)

	john, _ := s.User("u3")
	john.Username = "sarah"
	assert.ErrorIs(t, s.UpdateUser(ctx, john), domain.ErrUserAlreadyExists)

	// Unknown users are ignored.
	require.NoError(t, s.UpdateUser(ctx, domain.User{ID: "nobody", Username: "nobody", Role: domain.RoleMember}))
	assert.Empty(t, s.Logs())
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, withSeed())

	assert.ErrorIs(t, s.DeleteUser(ctx, "u1"), domain.ErrProtectedUser)

	require.NoError(t, s.DeleteUser(ctx, "u3"))
	_, ok := s.User("u3")
	assert.False(t, ok)
	assert.Equal(t, "Deleted user john", s.Logs()[0].Details)

	// References stay in place and resolve to Unknown.
	p, _ := s.Project("p1")
	assert.Contains(t, p.Members, "u3")
	assert.Equal(t, UnknownLabel, s.UserName("u3"))

	n := len(s.Logs())
	require.NoError(t, s.DeleteUser(ctx, "u3"))
	assert.Len(t, s.Logs(), n)
}
