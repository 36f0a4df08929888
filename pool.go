package sqlmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	// drivers reachable through Config.Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Pool wraps a *sqlx.DB; database/sql does the actual pooling.
type Pool struct {
	db      *sqlx.DB
	dialect Dialect

	driverName string
	dsn        string
	memory     bool

	logger             *slog.Logger
	loggingEnabled     bool
	slowQueryThreshold time.Duration

	telemetryEnabled bool
	metricsEnabled   bool
	metrics          *Metrics
	meterProvider    metric.MeterProvider
	tracerProvider   trace.TracerProvider

	borrowed *atomic.Int64
	inUse    *atomic.Int64
}

// NewPool opens the database described by cfg and verifies it with a ping.
func NewPool(ctx context.Context, cfg Config) (*Pool, error) {
	dialect, err := dialectFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	dsn, err := dsnFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	driver := cfg.driverName()

	var raw *sql.DB
	if cfg.Telemetry.Enabled {
		opts := []otelsql.Option{otelsql.WithAttributes(attribute.String("db.system", dialect.System()))}
		if cfg.Telemetry.TracerProvider != nil {
			opts = append(opts, otelsql.WithTracerProvider(cfg.Telemetry.TracerProvider))
		}
		raw, err = otelsql.Open(driver, dsn, opts...)
	} else {
		raw, err = sql.Open(driver, dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	pc := cfg.Pool
	if pc == (PoolConfig{}) {
		pc = DefaultPoolConfig()
	}
	raw.SetMaxOpenConns(pc.MaxOpen)
	raw.SetMaxIdleConns(pc.MaxIdle)
	raw.SetConnMaxLifetime(pc.ConnMaxLifetime)
	raw.SetConnMaxIdleTime(pc.ConnMaxIdleTime)

	p := newPool(raw, driver, dialect, !cfg.StrictMapping)
	p.dsn = dsn
	p.slowQueryThreshold = cfg.SlowQueryThreshold
	if cfg.Logging.Enabled {
		p.logger = cfg.Logging.logger()
		p.loggingEnabled = true
	}
	if cfg.Telemetry.Enabled {
		p.tracerProvider = cfg.Telemetry.TracerProvider
		p.EnableTelemetry(true)
		p.EnableMetrics(true)
	}

	start := time.Now()
	err = p.PingWithRetry(ctx, cfg.Connect)
	p.logConnection(ctx, "open", time.Since(start), err)
	if err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return p, nil
}

// newPool wraps an already opened *sql.DB. Tests use it with sqlmock.
func newPool(raw *sql.DB, driverName string, dialect Dialect, lenient bool) *Pool {
	db := sqlx.NewDb(raw, driverName)
	db.Mapper = reflectx.NewMapperFunc("db", snakeCase)
	if lenient {
		db = db.Unsafe()
	}
	return &Pool{
		db:         db,
		dialect:    dialect,
		driverName: driverName,
		borrowed:   atomic.NewInt64(0),
		inUse:      atomic.NewInt64(0),
	}
}

// Dialect reports the SQL flavour of the pool.
func (p *Pool) Dialect() Dialect { return p.dialect }

// DB exposes the underlying *sqlx.DB.
func (p *Pool) DB() *sqlx.DB {
	if p == nil {
		return nil
	}
	return p.db
}

// Ping verifies the database is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	return p.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.logConnection(context.Background(), "close", 0, err)
	return err
}
