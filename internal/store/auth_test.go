package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/taskflow/internal/domain"
	"github.com/prn-tf/taskflow/internal/repository"
)

func TestLogin_CreatedUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CreateUser(ctx, domain.User{Username: "ana", Password: "s3cret", Role: domain.RoleMember, FullName: "Ana"})
	require.NoError(t, err)

	user, err := s.Login(ctx, "ana", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "ana", s.Session().Username)

	entry := s.Logs()[0]
	assert.Equal(t, domain.ActionLogin, entry.Action)
	assert.Equal(t, "User logged in successfully", entry.Details)
	assert.Equal(t, "ana", entry.PerformedBy)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, withSeed())

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "sarah", password: "nope"},
		{name: "unknown user", username: "ghost", password: "123"},
		{name: "case sensitive username", username: "Sarah", password: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := s.Login(ctx, tt.username, tt.password)
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
			assert.Nil(t, user)
			assert.Nil(t, s.Session())

			entry := s.Logs()[0]
			assert.Equal(t, domain.ActionLoginFailed, entry.Action)
			assert.Equal(t, "Failed login attempt for username: "+tt.username, entry.Details)
			assert.Equal(t, domain.SystemActor, entry.PerformedBy)
		})
	}
}

func TestLogin_LegacyPlaintextMigration(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t, withSeed())

	_, err := s.Login(ctx, "john", "123")
	require.NoError(t, err)

	john, ok := s.User("u3")
	require.True(t, ok)
	assert.Equal(t, hash123, john.Password)
	assert.Equal(t, domain.ActionSecurityUpgrade, s.Logs()[0].Action)
	assert.Equal(t, "john", s.Logs()[0].PerformedBy)

	// The migrated digest is durable.
	data, err := backend.Get(ctx, repository.KeyUsers)
	require.NoError(t, err)
	var stored []domain.User
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, hash123, stored[2].Password)

	// A second login matches the digest.
	s.Logout(ctx)
	_, err = s.Login(ctx, "john", "123")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionLogin, s.Logs()[0].Action)

	john, _ = s.User("u3")
	assert.Equal(t, hash123, john.Password)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t, withSeed())
	loginAs(t, s, "sarah", "123")

	_, err := backend.Get(ctx, repository.KeySession)
	require.NoError(t, err)

	s.Logout(ctx)
	assert.Nil(t, s.Session())

	entry := s.Logs()[0]
	assert.Equal(t, domain.ActionLogout, entry.Action)
	assert.Equal(t, "User sarah logged out", entry.Details)
	assert.Equal(t, "sarah", entry.PerformedBy)

	_, err = backend.Get(ctx, repository.KeySession)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Logging out twice does nothing.
	n := len(s.Logs())
	s.Logout(ctx)
	assert.Len(t, s.Logs(), n)
}

func TestSession_SurvivesReload(t *testing.T) {
	s, backend := newTestStore(t, withSeed())
	loginAs(t, s, "sarah", "123")

	reloaded := newTestStoreOn(t, backend, withSeed())
	require.NotNil(t, reloaded.Session())
	assert.Equal(t, "u2", reloaded.Session().ID)
	assert.Len(t, reloaded.VisibleProjects(), 2)
}
