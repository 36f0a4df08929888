package sqlmap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Enabled bool
	Level   slog.Level
	// Logger overrides the default zerolog-backed logger on stderr.
	Logger *slog.Logger
}

func (c LoggingConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return NewLogger(os.Stderr, c.Level)
}

// EnableLogging enables or disables structured logging for this pool
func (p *Pool) EnableLogging(enabled bool) {
	if p == nil {
		return
	}
	p.loggingEnabled = enabled
	if enabled && p.logger == nil {
		p.logger = NewLogger(os.Stderr, slog.LevelInfo)
	}
}

// SetLogger sets a custom logger for this pool
func (p *Pool) SetLogger(logger *slog.Logger) {
	if p == nil {
		return
	}
	p.logger = logger
}

// SetSlowQueryThreshold makes queries slower than d log at WARN. Zero disables it.
func (p *Pool) SetSlowQueryThreshold(d time.Duration) {
	if p == nil {
		return
	}
	p.slowQueryThreshold = d
}

// logQuery logs database query execution with structured fields
func (p *Pool) logQuery(ctx context.Context, operation, query string, args []any, duration time.Duration, err error) {
	if p == nil || !p.loggingEnabled || p.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("query", query),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}
	// values are never logged, only their count
	if len(args) > 0 {
		attrs = append(attrs, slog.Int("arg_count", len(args)))
	}

	// sql.ErrNoRows from QueryRow is an answer, not a failure
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		if code, ok := errorCode(err); ok {
			attrs = append(attrs, slog.String("error_code", code))
		}
	} else {
		err = nil
		attrs = append(attrs, slog.String("status", "success"))
	}

	switch {
	case p.slowQueryThreshold > 0 && duration > p.slowQueryThreshold:
		p.logger.LogAttrs(ctx, slog.LevelWarn, "slow query detected", attrs...)
	case err != nil:
		p.logger.LogAttrs(ctx, slog.LevelError, "database query failed", attrs...)
	default:
		p.logger.LogAttrs(ctx, slog.LevelDebug, "database query executed", attrs...)
	}
}

// logConnection logs database connection events
func (p *Pool) logConnection(ctx context.Context, event string, duration time.Duration, err error) {
	if p == nil || !p.loggingEnabled || p.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("event", event),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
		slog.String("dialect", p.dialect.String()),
	}

	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		p.logger.LogAttrs(ctx, slog.LevelError, "database connection event", attrs...)
	} else {
		attrs = append(attrs, slog.String("status", "success"))
		p.logger.LogAttrs(ctx, slog.LevelDebug, "database connection event", attrs...)
	}
}

// logTransaction logs database transaction events
func (p *Pool) logTransaction(ctx context.Context, event string, duration time.Duration, err error) {
	if p == nil || !p.loggingEnabled || p.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("event", event),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}

	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		p.logger.LogAttrs(ctx, slog.LevelError, "database transaction event", attrs...)
	} else {
		attrs = append(attrs, slog.String("status", "success"))
		p.logger.LogAttrs(ctx, slog.LevelInfo, "database transaction event", attrs...)
	}
}

// errorCode extracts the vendor error code, if any.
func errorCode(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return strconv.Itoa(int(me.Number)), true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	if code, ok := sqliteCode(err); ok {
		return strconv.Itoa(code), true
	}
	return "", false
}
