// Package factory opens the collection backend selected by configuration.
package factory

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/taskflow/internal/config"
	"github.com/prn-tf/taskflow/internal/repository"
	"github.com/prn-tf/taskflow/internal/repository/memory"
	"github.com/prn-tf/taskflow/internal/repository/postgres"
	"github.com/prn-tf/taskflow/internal/repository/redis"
	"github.com/prn-tf/taskflow/internal/repository/s3"
	"github.com/prn-tf/taskflow/internal/repository/sqlite"
)

// Opened is a ready backend plus the shared clients other components reuse.
type Opened struct {
	Backend repository.Backend

	// Redis is set only for the redis driver. The writer lease shares it.
	Redis *goredis.Client
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*Opened, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn().Msg("using in-memory storage, state is lost on restart")
		return &Opened{Backend: memory.NewBackend()}, nil

	case config.DriverSQLite:
		sqliteCfg := sqlite.DefaultConfig(cfg.SQLite.Path)
		if cfg.SQLite.JournalMode != "" {
			sqliteCfg.JournalMode = cfg.SQLite.JournalMode
		}
		if cfg.SQLite.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.SQLite.BusyTimeout
		}
		if cfg.SQLite.SynchronousMode != "" {
			sqliteCfg.SynchronousMode = cfg.SQLite.SynchronousMode
		}
		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, err
		}
		return &Opened{Backend: sqlite.NewBackend(db)}, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		return &Opened{Backend: postgres.NewBackend(db)}, nil

	case config.DriverRedis:
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Opened{Backend: redis.NewBackend(client, logger), Redis: client}, nil

	case config.DriverS3:
		client, err := s3.NewClient(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		backend := s3.NewBackend(client, cfg.S3.Bucket, cfg.S3.Prefix, logger)
		if err := backend.Ping(ctx); err != nil {
			return nil, err
		}
		return &Opened{Backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Driver)
	}
}

// OpenCollections opens the backend and wraps it in a namespaced Collections.
func OpenCollections(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*repository.Collections, *Opened, error) {
	opened, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewCollections(opened.Backend, cfg.Namespace, logger), opened, nil
}
