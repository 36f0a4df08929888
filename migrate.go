package sqlmap

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-multierror"
)

//go:embed migrations
var migrations embed.FS

func (d Dialect) migrationDir() string {
	switch d {
	case SQLite:
		return "migrations/sqlite"
	case Postgres:
		return "migrations/postgres"
	default:
		return "migrations/mysql"
	}
}

// Migrate brings the schema (massive_user_list and last_name_list) up to date.
// An already current schema is not an error.
func (p *Pool) Migrate(ctx context.Context) (err error) {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	if p.driverName == "sqlmock" {
		return errors.New("migrate: not supported on a mock pool")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := iofs.New(migrations, p.dialect.migrationDir())
	if err != nil {
		return fmt.Errorf("migrate: source: %w", err)
	}

	// The migrate drivers close the *sql.DB they are given, so they get their
	// own handle; an in-memory SQLite database only exists on the pool's connection.
	db := p.db.DB
	if !p.memory {
		db, err = sql.Open(p.driverName, p.dsn)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("migrate: open: %w", err)
		}
	}

	var drv database.Driver
	switch p.dialect {
	case SQLite:
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case Postgres:
		drv, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	}
	if err != nil {
		_ = src.Close()
		if !p.memory {
			_ = db.Close()
		}
		return fmt.Errorf("migrate: driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, p.dialect.String(), drv)
	if err != nil {
		_ = src.Close()
		if !p.memory {
			_ = drv.Close()
		}
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() {
		if p.memory {
			if cerr := src.Close(); cerr != nil {
				err = multierror.Append(err, cerr).ErrorOrNil()
			}
			return
		}
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			err = multierror.Append(err, srcErr, dbErr).ErrorOrNil()
		}
	}()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-stop:
		}
	}()

	start := time.Now()
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		err = nil
	}
	p.logConnection(ctx, "migrate", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}
