package sqlmap

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Database file path, use ":memory:" for in-memory database
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	BusyTimeout time.Duration
	JournalMode string // WAL, DELETE, TRUNCATE, PERSIST, MEMORY, OFF
	Synchronous string // FULL, NORMAL, OFF

	Logging LoggingConfig
}

// DefaultSQLiteConfig returns a default SQLite configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:            "sqlmap.db",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
	}
}

func (c SQLiteConfig) inMemory() bool {
	return c.Path == ":memory:" || strings.Contains(c.Path, "mode=memory")
}

// NewSQLitePool opens a pool on modernc.org/sqlite.
// An in-memory database is pinned to a single connection that never expires,
// otherwise every new connection would see an empty database.
func NewSQLitePool(ctx context.Context, config SQLiteConfig) (*Pool, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	pc := PoolConfig{
		MaxOpen:         config.MaxOpenConns,
		MaxIdle:         config.MaxIdleConns,
		ConnMaxLifetime: config.ConnMaxLifetime,
		ConnMaxIdleTime: config.ConnMaxIdleTime,
	}
	if config.inMemory() {
		pc = PoolConfig{MaxOpen: 1, MaxIdle: 1}
	} else if pc == (PoolConfig{}) {
		pc = DefaultPoolConfig()
	}

	p, err := NewPool(ctx, Config{
		Driver:  "sqlite",
		DSN:     buildSQLiteDSN(config),
		Pool:    pc,
		Logging: config.Logging,
	})
	if err != nil {
		return nil, err
	}
	p.memory = config.inMemory()
	return p, nil
}

// buildSQLiteDSN renders config as a modernc.org/sqlite DSN with _pragma parameters.
func buildSQLiteDSN(config SQLiteConfig) string {
	q := url.Values{}
	if config.BusyTimeout > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.BusyTimeout.Milliseconds()))
	}
	q.Add("_pragma", "foreign_keys(1)")
	if config.JournalMode != "" && !config.inMemory() {
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", strings.ToUpper(config.JournalMode)))
	}
	if config.Synchronous != "" {
		q.Add("_pragma", fmt.Sprintf("synchronous(%s)", strings.ToUpper(config.Synchronous)))
	}
	q.Set("_time_format", "sqlite")

	sep := "?"
	if strings.Contains(config.Path, "?") {
		sep = "&"
	}
	return config.Path + sep + q.Encode()
}

// NewSQLiteTestPool opens a SQLite database at path and applies the migrations.
// Pass ":memory:" for a throwaway in-memory database.
func NewSQLiteTestPool(ctx context.Context, path string) (*Pool, error) {
	cfg := DefaultSQLiteConfig()
	cfg.Path = path
	cfg.Synchronous = "OFF"
	p, err := NewSQLitePool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Migrate(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}
