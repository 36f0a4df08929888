package sqlmap

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
)

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// scalar reports whether T scans from a single column rather than by name.
func scalar(t reflect.Type) bool {
	if reflect.PointerTo(t).Implements(scannerType) {
		return true
	}
	return t.Kind() != reflect.Struct || t == timeType
}

func scanInto[T any](rows *sqlx.Rows, single bool, dest *T) error {
	if !single {
		return rows.StructScan(dest)
	}
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(cols) != 1 {
		return fmt.Errorf("scan %T: want 1 column, got %d", *dest, len(cols))
	}
	return rows.Scan(dest)
}

func queryx(ctx context.Context, q Querier, query string, arg any) (*sqlx.Rows, error) {
	bound, args, err := bindNamed(q.Dialect(), query, arg)
	if err != nil {
		return nil, err
	}
	return q.Queryx(ctx, bound, args...)
}

func closeRows(rows *sqlx.Rows, err *error) {
	if cerr := rows.Close(); cerr != nil {
		*err = multierror.Append(*err, cerr).ErrorOrNil()
	}
}

// Query runs query with the named parameters in arg and maps every row to T.
// Rows are buffered into the returned slice.
func Query[T any](ctx context.Context, q Querier, query string, arg any) (out []T, err error) {
	err = QueryStream(ctx, q, query, arg, func(v T) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryStream maps rows to T one at a time and hands each to fn without
// buffering. Returning an error from fn stops the iteration.
func QueryStream[T any](ctx context.Context, q Querier, query string, arg any, fn func(T) error) (err error) {
	rows, err := queryx(ctx, q, query, arg)
	if err != nil {
		return err
	}
	defer closeRows(rows, &err)

	single := scalar(reflect.TypeOf((*T)(nil)).Elem())
	for rows.Next() {
		var v T
		if err := scanInto(rows, single, &v); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return rows.Err()
}

// QueryFirst returns the first row, or sql.ErrNoRows when there is none.
func QueryFirst[T any](ctx context.Context, q Querier, query string, arg any) (v T, err error) {
	rows, err := queryx(ctx, q, query, arg)
	if err != nil {
		return v, err
	}
	defer closeRows(rows, &err)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return v, err
		}
		return v, sql.ErrNoRows
	}
	err = scanInto(rows, scalar(reflect.TypeOf((*T)(nil)).Elem()), &v)
	return v, err
}

// QueryFirstOrDefault is QueryFirst with the zero T instead of sql.ErrNoRows.
func QueryFirstOrDefault[T any](ctx context.Context, q Querier, query string, arg any) (T, error) {
	v, err := QueryFirst[T](ctx, q, query, arg)
	if IsNotFound(err) {
		var zero T
		return zero, nil
	}
	return v, err
}

// QueryMaps returns rows keyed by column name. Text that the driver hands
// back as []byte is converted to string.
func QueryMaps(ctx context.Context, q Querier, query string, arg any) (out []map[string]any, err error) {
	rows, err := queryx(ctx, q, query, arg)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		m := make(map[string]any)
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryProcedure calls the parameterless stored procedure name and maps its rows to T.
func QueryProcedure[T any](ctx context.Context, q Querier, name string) ([]T, error) {
	return Query[T](ctx, q, q.Dialect().CallProcedure(name), nil)
}

// Exec runs a single statement with the named parameters in arg.
func Exec(ctx context.Context, q Querier, query string, arg any) (sql.Result, error) {
	bound, args, err := bindNamed(q.Dialect(), query, arg)
	if err != nil {
		return nil, err
	}
	return q.Exec(ctx, bound, args...)
}

// Execute runs query and returns the number of affected rows. When arg is a
// slice, the statement is prepared once and executed for each element; the
// counts are summed.
func Execute(ctx context.Context, q Querier, query string, arg any) (int64, error) {
	if !isBatch(arg) {
		res, err := Exec(ctx, q, query, arg)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	items := reflect.ValueOf(arg)
	if items.Len() == 0 {
		return 0, nil
	}
	first, _, err := bindNamed(q.Dialect(), query, items.Index(0).Interface())
	if err != nil {
		return 0, err
	}
	stmt, cached, err := q.Prepare(ctx, first)
	if err != nil {
		return 0, err
	}
	if !cached {
		defer stmt.Close()
	}

	var total int64
	for i := 0; i < items.Len(); i++ {
		bound, args, err := bindNamed(q.Dialect(), query, items.Index(i).Interface())
		if err != nil {
			return total, fmt.Errorf("item %d: %w", i, err)
		}
		var res sql.Result
		if bound == first {
			res, err = execStmt(ctx, q, stmt, bound, args)
		} else {
			// IN expansion gave this item a different shape
			res, err = q.Exec(ctx, bound, args...)
		}
		if err != nil {
			return total, fmt.Errorf("item %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ExecInsert runs an INSERT and returns the generated value of idColumn.
// Postgres has no LastInsertId, so the statement gets a RETURNING clause there.
func ExecInsert(ctx context.Context, q Querier, query string, arg any, idColumn string) (int64, error) {
	if q.Dialect() == Postgres {
		return QueryFirst[int64](ctx, q, query+" RETURNING "+idColumn, arg)
	}
	res, err := Exec(ctx, q, query, arg)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// observer is implemented by Conn and Tx so helpers can instrument prepared statements.
type observer interface {
	pool() *Pool
}

func (c *Conn) pool() *Pool { return c.p }
func (tx *Tx) pool() *Pool  { return tx.p }

func execStmt(ctx context.Context, q Querier, stmt *sqlx.Stmt, query string, args []any) (sql.Result, error) {
	o, ok := q.(observer)
	if !ok {
		return stmt.ExecContext(ctx, args...)
	}
	var res sql.Result
	err := o.pool().observe(ctx, "exec_prepared", query, args, func(ctx context.Context) error {
		var err error
		res, err = stmt.ExecContext(ctx, args...)
		return err
	})
	return res, err
}
