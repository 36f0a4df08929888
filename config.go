package sqlmap

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

// PoolConfig holds the database/sql pool limits applied after open.
type PoolConfig struct {
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Config holds library configuration.
type Config struct {
	// Driver selects the sql driver: "mysql" (default), "sqlite", "pgx" or "sqlmock" in tests.
	Driver string
	// Dialect overrides the dialect derived from Driver (needed for "sqlmock").
	Dialect string
	DSN     string
	// Field-based DSN building (used when DSN is empty)
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Params   map[string]string

	Pool               PoolConfig
	Connect            ConnectPolicy
	Telemetry          TelemetryConfig
	Logging            LoggingConfig
	SlowQueryThreshold time.Duration
	// StrictMapping makes struct mapping fail on columns with no destination field.
	StrictMapping bool
}

// DefaultConfig mirrors the local development server the demos were written against.
func DefaultConfig() Config {
	return Config{
		Driver:   "mysql",
		Host:     "127.0.0.1",
		Port:     3306,
		Username: "root",
		Database: "GriffCoUnlimited",
		Pool:     DefaultPoolConfig(),
	}
}

// DefaultPoolConfig returns a small pool suitable for sequential demos.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpen:         4,
		MaxIdle:         2,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

func (c Config) driverName() string {
	if strings.TrimSpace(c.Driver) == "" {
		return "mysql"
	}
	return c.Driver
}

// dsnFromConfig returns a DSN string.
// Priority: if Config.DSN is non-empty, return it unchanged.
// Otherwise build from host/port/username/password/database/params for the driver.
func dsnFromConfig(c Config) (string, error) {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN, nil
	}
	switch c.driverName() {
	case "mysql":
		return mysqlDSN(c), nil
	case "pgx", "postgres":
		return postgresDSN(c), nil
	case "sqlite":
		if c.Database == "" {
			return "", fmt.Errorf("sqlite requires Database (file path or :memory:)")
		}
		return buildSQLiteDSN(SQLiteConfig{Path: c.Database, BusyTimeout: 5 * time.Second}), nil
	default:
		return "", fmt.Errorf("cannot build DSN for driver %q, set Config.DSN", c.Driver)
	}
}

func mysqlDSN(c Config) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = c.Host
	if c.Port > 0 {
		mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.DBName = c.Database
	mc.ParseTime = true
	if len(c.Params) > 0 {
		mc.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			if k == "parseTime" {
				mc.ParseTime = v == "true"
				continue
			}
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

func postgresDSN(c Config) string {
	u := url.URL{Scheme: "postgres", Host: c.Host, Path: "/" + c.Database}
	if c.Port > 0 {
		u.Host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	// stable order for test determinism
	if len(c.Params) > 0 {
		keys := make([]string, 0, len(c.Params))
		for k := range c.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		q := url.Values{}
		for _, k := range keys {
			q.Set(k, c.Params[k])
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}
