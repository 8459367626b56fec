package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlearn/finflash/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:            ":8080",
		DBPath:          "test.db",
		LogLevel:        "INFO",
		SyncWorkerCount: 2,
		SyncQueueSize:   64,
		DigestHour:      7,
		SessionLimit:    20,
		ImportRowLimit:  1000,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_SingleFieldErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		expected string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "ADDR cannot be empty"},
		{"empty db path", func(c *config.Config) { c.DBPath = "" }, "DB_PATH cannot be empty"},
		{"bad log level", func(c *config.Config) { c.LogLevel = "LOUD" }, "LOG_LEVEL"},
		{"zero sync workers", func(c *config.Config) { c.SyncWorkerCount = 0 }, "SYNC_WORKER_COUNT"},
		{"negative queue", func(c *config.Config) { c.SyncQueueSize = -1 }, "SYNC_QUEUE_SIZE"},
		{"digest hour out of range", func(c *config.Config) { c.DigestHour = 24 }, "DIGEST_HOUR"},
		{"zero session limit", func(c *config.Config) { c.SessionLimit = 0 }, "SESSION_LIMIT"},
		{"zero import row limit", func(c *config.Config) { c.ImportRowLimit = 0 }, "IMPORT_ROW_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestValidate_LowercaseLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
	assert.Contains(t, err.Error(), "SYNC_WORKER_COUNT")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("SYNC_WORKER_COUNT", "5")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.SyncWorkerCount)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_PATH", "LOG_LEVEL", "SYNC_WORKER_COUNT", "SYNC_QUEUE_SIZE"} {
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 2, cfg.SyncWorkerCount)
	assert.NoError(t, cfg.Validate())
}
