package sqlmap

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
)

// Conn wraps a single connection obtained from the pool.
// It must be closed to return the connection back to the pool.
type Conn struct {
	inner  *sqlx.Conn
	p      *Pool
	acq    time.Time
	stmts  *stmtCache
	closed bool
}

// WithConn acquires a connection, calls fn, and always returns the connection.
func (p *Pool) WithConn(ctx context.Context, fn func(*Conn) error) (err error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()
	return fn(conn)
}

// Acquire gets a connection from the underlying pool honoring ctx.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("nil pool")
	}
	start := time.Now()
	c, err := p.db.Connx(ctx)
	p.logConnection(ctx, "acquire", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	p.onBorrow(ctx)
	return &Conn{inner: c, p: p, acq: time.Now()}, nil
}

// Close releases cached statements and returns the connection to the pool.
// Later calls on c fail with sql.ErrConnDone.
func (c *Conn) Close() error {
	if c == nil || c.inner == nil || c.closed {
		return nil
	}
	c.closed = true
	var result error
	if c.stmts != nil {
		if err := c.stmts.closeAll(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := c.inner.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		result = multierror.Append(result, err)
	}
	c.p.onReturn(context.Background(), time.Since(c.acq))
	return result
}

// EnableStmtCache keeps up to capacity prepared statements for this connection.
func (c *Conn) EnableStmtCache(capacity int) {
	if c == nil {
		return
	}
	if c.stmts != nil {
		_ = c.stmts.closeAll()
	}
	c.stmts = newStmtCache(capacity)
}

// Dialect implements Querier.
func (c *Conn) Dialect() Dialect { return c.p.dialect }

// Exec executes a statement on the connection.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c == nil || c.inner == nil {
		return nil, sql.ErrConnDone
	}
	var res sql.Result
	err := c.p.observe(ctx, "exec", query, args, func(ctx context.Context) error {
		var err error
		res, err = c.inner.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

// Query runs a query and returns rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c == nil || c.inner == nil {
		return nil, sql.ErrConnDone
	}
	var rows *sql.Rows
	err := c.p.observe(ctx, "query", query, args, func(ctx context.Context) error {
		var err error
		rows, err = c.inner.QueryContext(ctx, query, args...)
		return err
	})
	return rows, err
}

// Queryx runs a query and returns mapping-aware rows.
func (c *Conn) Queryx(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	if c == nil || c.inner == nil {
		return nil, sql.ErrConnDone
	}
	var rows *sqlx.Rows
	err := c.p.observe(ctx, "query", query, args, func(ctx context.Context) error {
		var err error
		rows, err = c.inner.QueryxContext(ctx, query, args...)
		return err
	})
	return rows, err
}

// QueryRow runs a query and returns a single row.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if c == nil || c.inner == nil {
		return &sql.Row{}
	}
	var row *sql.Row
	_ = c.p.observe(ctx, "query_row", query, args, func(ctx context.Context) error {
		row = c.inner.QueryRowContext(ctx, query, args...)
		return row.Err()
	})
	return row
}

// Prepare returns a prepared statement, reusing the connection cache when enabled.
// Without a cache the caller owns the statement.
func (c *Conn) Prepare(ctx context.Context, query string) (*sqlx.Stmt, bool, error) {
	if c == nil || c.inner == nil {
		return nil, false, sql.ErrConnDone
	}
	return c.stmts.getOrPrepare(ctx, c.inner.PreparexContext, query)
}
