package sqlmap

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by applyEnv.
const (
	EnvDriver          = "SQLMAP_DRIVER"
	EnvDialect         = "SQLMAP_DIALECT"
	EnvDSN             = "SQLMAP_DSN"
	EnvHost            = "SQLMAP_HOST"
	EnvPort            = "SQLMAP_PORT"
	EnvUsername        = "SQLMAP_USERNAME"
	EnvPassword        = "SQLMAP_PASSWORD"
	EnvDatabase        = "SQLMAP_DATABASE"
	EnvSlowQueryMS     = "SQLMAP_SLOW_QUERY_MS"
	EnvLogLevel        = "SQLMAP_LOG_LEVEL"
	EnvConnectAttempts = "SQLMAP_CONNECT_ATTEMPTS"
	EnvTelemetry       = "SQLMAP_TELEMETRY"
)

// LoadEnv loads .env from the working directory if present.
// A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	}
	return godotenv.Load(files...)
}

// applyEnv overrides cfg with any SQLMAP_* variables that are set.
func applyEnv(cfg *Config) {
	if v, ok := lookup(EnvDriver); ok {
		cfg.Driver = v
	}
	if v, ok := lookup(EnvDialect); ok {
		cfg.Dialect = v
	}
	if v, ok := lookup(EnvDSN); ok {
		cfg.DSN = v
	}
	if v, ok := lookup(EnvHost); ok {
		cfg.Host = v
	}
	if v, ok := lookup(EnvPort); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v, ok := lookup(EnvUsername); ok {
		cfg.Username = v
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		cfg.Password = v
	}
	if v, ok := lookup(EnvDatabase); ok {
		cfg.Database = v
	}
	if v, ok := lookup(EnvSlowQueryMS); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SlowQueryThreshold = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := lookup(EnvLogLevel); ok {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.Logging.Enabled = true
			cfg.Logging.Level = lvl
		}
	}
	if v, ok := lookup(EnvConnectAttempts); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Connect.MaxAttempts = n
		}
	}
	if v, ok := lookup(EnvTelemetry); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.Enabled = b
		}
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// ConfigFromEnv returns DefaultConfig with SQLMAP_* overrides applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	applyEnv(&cfg)
	return cfg
}

// NewPoolEnv creates a pool configured purely from the environment.
func NewPoolEnv(ctx context.Context) (*Pool, error) {
	return NewPool(ctx, ConfigFromEnv())
}
