package sqlmap

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Querier is the surface shared by Conn and Tx. The mapping helpers
// (Query, QueryFirst, Execute, ...) accept any Querier.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Queryx(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	// Prepare reports whether the returned statement is owned by a cache;
	// when it is not, the caller must close it.
	Prepare(ctx context.Context, query string) (*sqlx.Stmt, bool, error)
	Dialect() Dialect
}

// Ensure our concrete types implement the interface at compile time
var (
	_ Querier = (*Conn)(nil)
	_ Querier = (*Tx)(nil)
)
