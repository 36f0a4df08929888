package sqlmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
)

// Tx wraps *sqlx.Tx and shares the Querier surface with Conn.
type Tx struct {
	inner *sqlx.Tx
	p     *Pool
	stmts *stmtCache
}

// WithinTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics.
// A failed rollback is reported together with the error from fn.
func (p *Pool) WithinTx(ctx context.Context, fn func(*Tx) error, opts ...*sql.TxOptions) (err error) {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	var txOpts *sql.TxOptions
	if len(opts) > 0 {
		txOpts = opts[0]
	}
	start := time.Now()
	inner, err := p.db.BeginTxx(ctx, txOpts)
	if err != nil {
		p.logTransaction(ctx, "begin", time.Since(start), err)
		return err
	}
	p.logTransaction(ctx, "begin", time.Since(start), nil)
	tx := &Tx{inner: inner, p: p}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.rollback()
			p.recordTransaction(ctx, time.Since(start), fmt.Errorf("panic: %v", r))
			panic(r)
		}
		p.recordTransaction(ctx, time.Since(start), err)
	}()

	if err = fn(tx); err != nil {
		if rerr := tx.rollback(); rerr != nil {
			err = multierror.Append(err, rerr)
		}
		p.logTransaction(ctx, "rollback", time.Since(start), err)
		return err
	}
	err = tx.commit()
	p.logTransaction(ctx, "commit", time.Since(start), err)
	return err
}

func (tx *Tx) commit() error {
	var result error
	if err := tx.stmts.closeAll(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := tx.inner.Commit(); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

func (tx *Tx) rollback() error {
	_ = tx.stmts.closeAll()
	if err := tx.inner.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// EnableStmtCache keeps up to capacity prepared statements for the life of the transaction.
func (tx *Tx) EnableStmtCache(capacity int) {
	if tx == nil {
		return
	}
	if tx.stmts != nil {
		_ = tx.stmts.closeAll()
	}
	tx.stmts = newStmtCache(capacity)
}

// Dialect implements Querier.
func (tx *Tx) Dialect() Dialect { return tx.p.dialect }

// Exec executes within the transaction.
func (tx *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx == nil || tx.inner == nil {
		return nil, sql.ErrTxDone
	}
	var res sql.Result
	err := tx.p.observe(ctx, "exec", query, args, func(ctx context.Context) error {
		var err error
		res, err = tx.inner.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

// Query runs a query within the transaction.
func (tx *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if tx == nil || tx.inner == nil {
		return nil, sql.ErrTxDone
	}
	var rows *sql.Rows
	err := tx.p.observe(ctx, "query", query, args, func(ctx context.Context) error {
		var err error
		rows, err = tx.inner.QueryContext(ctx, query, args...)
		return err
	})
	return rows, err
}

// Queryx runs a query within the transaction and returns mapping-aware rows.
func (tx *Tx) Queryx(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	if tx == nil || tx.inner == nil {
		return nil, sql.ErrTxDone
	}
	var rows *sqlx.Rows
	err := tx.p.observe(ctx, "query", query, args, func(ctx context.Context) error {
		var err error
		rows, err = tx.inner.QueryxContext(ctx, query, args...)
		return err
	})
	return rows, err
}

// QueryRow runs a single-row query within the transaction.
func (tx *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if tx == nil || tx.inner == nil {
		return &sql.Row{}
	}
	var row *sql.Row
	_ = tx.p.observe(ctx, "query_row", query, args, func(ctx context.Context) error {
		row = tx.inner.QueryRowContext(ctx, query, args...)
		return row.Err()
	})
	return row
}

// Prepare implements Querier.
func (tx *Tx) Prepare(ctx context.Context, query string) (*sqlx.Stmt, bool, error) {
	if tx == nil || tx.inner == nil {
		return nil, false, sql.ErrTxDone
	}
	return tx.stmts.getOrPrepare(ctx, tx.inner.PreparexContext, query)
}
