package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/taskflow/internal/app"
	"github.com/prn-tf/taskflow/internal/config"
	"github.com/prn-tf/taskflow/internal/jobs"
	"github.com/prn-tf/taskflow/internal/lock"
)

func openTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverMemory},
		Auth:    config.AuthConfig{Hasher: "sha256", SuperUserID: "u1", Seed: true},
		Lease:   config.LeaseConfig{TTL: time.Minute},
		Backup:  config.BackupConfig{Dir: t.TempDir()},
	}
	a, err := app.Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func writeBackup(t *testing.T, a *app.App) string {
	t.Helper()
	job, err := jobs.NewBackup(a.Store, a.Locker, a.Metrics, zerolog.Nop(), a.Config.Backup, "")
	require.NoError(t, err)
	result, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	return result.Path
}

func TestRestore_RequiresForceWithLocalLease(t *testing.T) {
	ctx := context.Background()
	a := openTestApp(t)
	path := writeBackup(t, a)

	err := restore(ctx, a, []string{path})
	assert.ErrorIs(t, err, app.ErrLeaseNotShared)

	require.NoError(t, restore(ctx, a, []string{"--force", path}))
	assert.Len(t, a.Store.Users(), 3)
}

func TestRestore_RefusesWhileLeaseHeld(t *testing.T) {
	ctx := context.Background()
	a := openTestApp(t)
	path := writeBackup(t, a)

	lease := a.WriterLease()
	ok, err := lease.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	err = restore(ctx, a, []string{path, "--force"})
	assert.ErrorIs(t, err, lock.ErrLockNotAcquired)
}

func TestRestore_Usage(t *testing.T) {
	a := openTestApp(t)
	assert.ErrorContains(t, restore(context.Background(), a, []string{"--force"}), "usage")
}
