// Package app assembles the store and its infrastructure from configuration.
// Both the server and the admin CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/taskflow/internal/config"
	"github.com/prn-tf/taskflow/internal/lock"
	"github.com/prn-tf/taskflow/internal/metrics"
	"github.com/prn-tf/taskflow/internal/pkg/crypto"
	"github.com/prn-tf/taskflow/internal/repository/factory"
	"github.com/prn-tf/taskflow/internal/store"
)

// ErrLeaseNotShared is returned when a running server could not see the
// writer lease taken by this process.
var ErrLeaseNotShared = errors.New("writer lease is local to this process")

// App holds the opened store and the resources behind it.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Metrics *metrics.Metrics
	Locker  lock.Locker
	Logger  zerolog.Logger

	opened *factory.Opened
}

// Open connects the configured backend and hydrates the store.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	hasher, err := crypto.NewHasher(cfg.Auth.Hasher, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}

	collections, opened, err := factory.OpenCollections(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	m := metrics.New()
	s, err := store.New(ctx, store.Options{
		Collections: collections,
		Hasher:      hasher,
		Metrics:     m,
		Logger:      logger,
		SuperUserID: cfg.Auth.SuperUserID,
		Seed:        cfg.Auth.Seed,
	})
	if err != nil {
		_ = opened.Backend.Close()
		return nil, err
	}

	return &App{
		Config:  cfg,
		Store:   s,
		Metrics: m,
		Locker:  newLocker(opened),
		Logger:  logger,
		opened:  opened,
	}, nil
}

// newLocker shares Redis between processes when it is the backend.
// Other backends get a process-local lock.
func newLocker(opened *factory.Opened) lock.Locker {
	if opened.Redis != nil {
		return lock.NewRedisLocker(opened.Redis)
	}
	return lock.NewMemoryLocker()
}

// WriterLease returns the lease guarding the store namespace.
func (a *App) WriterLease() *lock.Lock {
	return lock.NewLock(a.Locker, lock.Keys.StoreWriter(a.Config.Storage.Namespace))
}

// LeaseShared reports whether other processes see the writer lease.
func (a *App) LeaseShared() bool {
	_, ok := a.Locker.(*lock.RedisLocker)
	return ok
}

// AcquireWriter takes the writer lease for an offline maintenance command.
// Without force it refuses when the lease is process-local, since a running
// server would not notice it.
func (a *App) AcquireWriter(ctx context.Context, force bool) (*lock.Lock, error) {
	if !a.LeaseShared() && !force {
		return nil, fmt.Errorf("%w: stop the server and pass --force", ErrLeaseNotShared)
	}

	lease := a.WriterLease()
	acquired, err := lease.Acquire(ctx, a.Config.Lease.TTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, fmt.Errorf("%w: a server is writing this namespace", lock.ErrLockNotAcquired)
	}
	return lease, nil
}

// Flush writes every collection. Only the lease holder should call it.
func (a *App) Flush(ctx context.Context) error {
	return a.Store.Flush(ctx)
}

// Close closes the backend. Mutations are persisted as they happen, so
// nothing is written here.
func (a *App) Close() error {
	return a.opened.Backend.Close()
}
