// Package jobs runs background maintenance for the store.
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/prn-tf/taskflow/internal/config"
	"github.com/prn-tf/taskflow/internal/lock"
	"github.com/prn-tf/taskflow/internal/metrics"
	"github.com/prn-tf/taskflow/internal/pkg/crypto"
	"github.com/prn-tf/taskflow/internal/store"
)

const (
	backupPrefix     = "taskflow-"
	backupSuffix     = ".json"
	encryptedSuffix  = ".json.enc"
	backupTimeLayout = "20060102T150405Z"
)

// SnapshotSource provides the state to back up.
type SnapshotSource interface {
	Snapshot() store.Snapshot
}

// BackupResult describes one backup run.
type BackupResult struct {
	// Path is the written file, empty when the run was skipped or failed.
	Path string

	// Pruned lists the old backups removed by retention.
	Pruned []string

	// Skipped is true when another process held the backup lock.
	Skipped bool

	Duration time.Duration
}

// Backup writes periodic snapshots of the store to a directory.
type Backup struct {
	source    SnapshotSource
	locker    lock.Locker
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	config    config.BackupConfig
	namespace string
	encryptor *crypto.Encryptor
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewBackup creates a backup job. Snapshots are encrypted when the
// configuration carries an encryption key.
func NewBackup(
	source SnapshotSource,
	locker lock.Locker,
	m *metrics.Metrics,
	logger zerolog.Logger,
	cfg config.BackupConfig,
	namespace string,
) (*Backup, error) {
	b := &Backup{
		source:    source,
		locker:    locker,
		metrics:   m,
		logger:    logger.With().Str("job", "backup").Logger(),
		config:    cfg,
		namespace: namespace,
		now:       time.Now,
	}
	if cfg.EncryptionKey != "" {
		enc, err := crypto.NewEncryptorFromHex(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		b.encryptor = enc
	}
	return b, nil
}

// Start schedules the job. It is a no-op when already running.
func (b *Backup) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(b.config.Schedule, func() {
		_, _ = b.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", b.config.Schedule, err)
	}
	c.Start()

	b.cron = c
	b.running = true

	b.logger.Info().
		Str("schedule", b.config.Schedule).
		Str("dir", b.config.Dir).
		Int("keep", b.config.Keep).
		Msg("backup scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running backup to finish.
func (b *Backup) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	c := b.cron
	b.mu.Unlock()

	<-c.Stop().Done()
	b.logger.Info().Msg("backup scheduler stopped")
}

// RunOnce writes one backup and applies retention.
func (b *Backup) RunOnce(ctx context.Context) (result BackupResult, err error) {
	began := time.Now()
	start := b.now()
	defer func() {
		result.Duration = time.Since(began)
		if !result.Skipped {
			b.metrics.RecordBackup(err)
		}
	}()

	lockKey := lock.Keys.Backup(b.namespace)
	acquired, err := b.locker.Acquire(ctx, lockKey, 5*time.Minute)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to acquire backup lock")
		return result, err
	}
	if !acquired {
		b.logger.Debug().Msg("backup lock held by another process, skipping run")
		result.Skipped = true
		return result, nil
	}
	defer func() {
		if _, err := b.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			b.logger.Error().Err(err).Msg("failed to release backup lock")
		}
	}()

	data, err := b.source.Snapshot().Encode()
	if err != nil {
		return result, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	suffix := backupSuffix
	if b.encryptor != nil {
		if data, err = b.encryptor.Seal(data); err != nil {
			return result, fmt.Errorf("failed to encrypt snapshot: %w", err)
		}
		suffix = encryptedSuffix
	}

	path, err := b.write(start, suffix, data)
	if err != nil {
		b.logger.Error().Err(err).Msg("backup failed")
		return result, err
	}
	result.Path = path

	result.Pruned, err = b.prune()
	if err != nil {
		b.logger.Error().Err(err).Msg("backup retention failed")
		return result, err
	}

	b.logger.Info().
		Str("path", path).
		Int("bytes", len(data)).
		Int("pruned", len(result.Pruned)).
		Msg("backup written")
	return result, nil
}

// write stores data under a timestamped name, renaming into place so a
// partial file is never visible.
func (b *Backup) write(at time.Time, suffix string, data []byte) (string, error) {
	if err := os.MkdirAll(b.config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := backupPrefix + at.UTC().Format(backupTimeLayout) + suffix
	path := filepath.Join(b.config.Dir, name)

	tmp, err := os.CreateTemp(b.config.Dir, ".backup-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move backup into place: %w", err)
	}
	return path, nil
}

// prune removes the oldest backups beyond the configured count.
func (b *Backup) prune() ([]string, error) {
	files, err := ListBackups(b.config.Dir)
	if err != nil {
		return nil, err
	}
	if b.config.Keep <= 0 || len(files) <= b.config.Keep {
		return nil, nil
	}

	stale := files[:len(files)-b.config.Keep]
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return stale, nil
}

// ListBackups returns the backup files in dir, oldest first.
func ListBackups(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, backupPrefix+"*"))
	if err != nil {
		return nil, err
	}
	files := slices.DeleteFunc(matches, func(path string) bool {
		return !strings.HasSuffix(path, backupSuffix) && !strings.HasSuffix(path, encryptedSuffix)
	})
	slices.Sort(files)
	return files, nil
}

// ReadBackup loads a backup file. Encrypted backups need the hex key they
// were written with.
func ReadBackup(path, hexKey string) (store.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Snapshot{}, err
	}

	if strings.HasSuffix(path, encryptedSuffix) {
		if hexKey == "" {
			return store.Snapshot{}, fmt.Errorf("%s is encrypted and no backup.encryption_key is configured", path)
		}
		enc, err := crypto.NewEncryptorFromHex(hexKey)
		if err != nil {
			return store.Snapshot{}, err
		}
		if data, err = enc.Open(data); err != nil {
			return store.Snapshot{}, err
		}
	}
	return store.DecodeSnapshot(data)
}
