package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "sha256", cfg.Auth.Hasher)
	assert.Equal(t, "u1", cfg.Auth.SuperUserID)
	assert.True(t, cfg.Auth.Seed)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Lease.TTL)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9100
storage:
  driver: memory
  namespace: "team-a:"
auth:
  hasher: bcrypt
  bcrypt_cost: 6
`), 0o644))

	t.Setenv("TASKFLOW_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "team-a:", cfg.Storage.Namespace)
	assert.Equal(t, "bcrypt", cfg.Auth.Hasher)
	assert.Equal(t, 6, cfg.Auth.BcryptCost)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Storage.IsEmbedded())
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{Driver: DriverMemory},
		Auth:    AuthConfig{Hasher: "sha256", SuperUserID: "u1"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Lease:   LeaseConfig{TTL: time.Second},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }, wantErr: "storage.driver"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Driver = DriverSQLite }, wantErr: "storage.sqlite.path"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Driver = DriverS3 }, wantErr: "storage.s3.bucket"},
		{name: "unknown hasher", mutate: func(c *Config) { c.Auth.Hasher = "md5" }, wantErr: "auth.hasher"},
		{name: "bcrypt cost", mutate: func(c *Config) { c.Auth.Hasher = "bcrypt"; c.Auth.BcryptCost = 2 }, wantErr: "auth.bcrypt_cost"},
		{name: "ai without key", mutate: func(c *Config) { c.AI.Enabled = true }, wantErr: "ai.api_key"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "short backup key", mutate: func(c *Config) { c.Backup.EncryptionKey = "abcd" }, wantErr: "backup.encryption_key"},
		{name: "zero lease", mutate: func(c *Config) { c.Lease.TTL = 0 }, wantErr: "lease.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "tf", Password: "pw", Database: "taskflow", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=tf password=pw dbname=taskflow sslmode=disable", cfg.DSN())
}
