package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string
	DBPath          string
	LogLevel        string
	SyncWorkerCount int
	SyncQueueSize   int
	DigestHour      int
	SessionLimit    int
	ImportRowLimit  int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", ":8080"),
		DBPath:          envOr("DB_PATH", "file:finflash.db"),
		LogLevel:        envOr("LOG_LEVEL", "INFO"),
		SyncWorkerCount: envIntOr("SYNC_WORKER_COUNT", 2),
		SyncQueueSize:   envIntOr("SYNC_QUEUE_SIZE", 64),
		DigestHour:      envIntOr("DIGEST_HOUR", 7),
		SessionLimit:    envIntOr("SESSION_LIMIT", 20),
		ImportRowLimit:  envIntOr("IMPORT_ROW_LIMIT", 1000),
	}
}

// Validate checks the loaded configuration and reports every problem found.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.SyncWorkerCount < 1 {
		problems = append(problems, "SYNC_WORKER_COUNT must be at least 1")
	}
	if c.SyncQueueSize < 1 {
		problems = append(problems, "SYNC_QUEUE_SIZE must be at least 1")
	}
	if c.DigestHour < 0 || c.DigestHour > 23 {
		problems = append(problems, "DIGEST_HOUR must be between 0 and 23")
	}
	if c.SessionLimit < 1 {
		problems = append(problems, "SESSION_LIMIT must be at least 1")
	}
	if c.ImportRowLimit < 1 {
		problems = append(problems, "IMPORT_ROW_LIMIT must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
