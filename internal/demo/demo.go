// Package demo holds the start-up shared by the programs under examples/.
package demo

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/swiftkick/sqlmap"
)

// Func is one demo. Results go to stdout; logs go to stderr.
type Func func(ctx context.Context, pool *sqlmap.Pool, logger *slog.Logger) error

// Run loads .env, opens a pool from SQLMAP_* variables and runs fn.
// Any error ends the process with a non-zero status.
func Run(name string, fn Func) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := sqlmap.LoadEnv(); err != nil {
		log.Fatalf("%s: load .env: %v", name, err)
	}
	cfg := sqlmap.ConfigFromEnv()
	logger := sqlmap.NewLogger(os.Stderr, cfg.Logging.Level).With(
		slog.String("run_id", uuid.NewString()),
		slog.String("demo", name),
	)
	cfg.Logging.Logger = logger

	pool, err := sqlmap.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	if err := RunWith(ctx, name, pool, logger, fn); err != nil {
		log.Fatalf("%s: %v", name, err)
	}
}

// RunWith runs fn on an open pool and closes it afterwards.
func RunWith(ctx context.Context, name string, pool *sqlmap.Pool, logger *slog.Logger, fn Func) error {
	start := time.Now()
	logger.Info("demo started", slog.String("dialect", pool.Dialect().String()))
	err := fn(ctx, pool, logger)
	if cerr := pool.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Error("demo failed", slog.String("error", err.Error()))
		return err
	}
	logger.Info("demo finished", slog.Duration("elapsed", time.Since(start)))
	return nil
}
