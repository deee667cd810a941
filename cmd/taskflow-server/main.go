// Package main is the entry point for the Task Flow server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/prn-tf/taskflow/internal/ai"
	"github.com/prn-tf/taskflow/internal/app"
	"github.com/prn-tf/taskflow/internal/config"
	"github.com/prn-tf/taskflow/internal/handler"
	"github.com/prn-tf/taskflow/internal/jobs"
	"github.com/prn-tf/taskflow/internal/lock"
	"github.com/prn-tf/taskflow/internal/pkg/logging"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("TASKFLOW_CONFIG"))
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting Task Flow server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close storage")
		}
	}()

	// Only one process may write a namespace at a time.
	lease := a.WriterLease()
	acquired, err := lease.Acquire(ctx, cfg.Lease.TTL)
	if err != nil {
		return err
	}
	if !acquired {
		return lock.ErrLockNotAcquired
	}
	defer func() {
		// Final flush happens while the lease is still held.
		if err := a.Flush(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to flush store")
		}
		if err := lease.Release(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to release writer lease")
		}
	}()

	leaseCtx, cancelLease := context.WithCancel(ctx)
	defer cancelLease()
	go func() {
		if err := lease.KeepAlive(leaseCtx, cfg.Lease.TTL); err != nil {
			logger.Error().Err(err).Str("key", lease.Key()).Msg("writer lease lost, shutting down")
			stop()
		}
	}()

	if cfg.Backup.Enabled {
		backup, err := jobs.NewBackup(a.Store, a.Locker, a.Metrics, logger, cfg.Backup, cfg.Storage.Namespace)
		if err != nil {
			return err
		}
		if err := backup.Start(); err != nil {
			return err
		}
		defer backup.Stop()
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := handler.NewRouter(handler.RouterConfig{
		Store:       a.Store,
		AI:          ai.NewClient(cfg.AI, a.Metrics, logger),
		Metrics:     a.Metrics,
		MetricsPath: metricsPath,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      http.MaxBytesHandler(router.Handler(), cfg.Server.MaxBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
