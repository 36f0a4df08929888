package sqlmap

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingQuerier captures Exec calls instead of talking to a database.
type recordingQuerier struct {
	dialect Dialect
	cols    int
	queries []string
	args    []int
}

func (r *recordingQuerier) Dialect() Dialect { return r.dialect }

func (r *recordingQuerier) Exec(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, len(args))
	return driver.RowsAffected(len(args) / r.cols), nil
}

func (r *recordingQuerier) Query(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingQuerier) Queryx(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingQuerier) QueryRow(context.Context, string, ...any) *sql.Row { return &sql.Row{} }

func (r *recordingQuerier) Prepare(context.Context, string) (*sqlx.Stmt, bool, error) {
	return nil, false, errors.New("not implemented")
}

func makeRows(n, cols int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = make([]any, cols)
		for j := range rows[i] {
			rows[i][j] = i
		}
	}
	return rows
}

func TestBulkInsert_ChunksByParameterLimit(t *testing.T) {
	cols := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	q := &recordingQuerier{dialect: SQLite, cols: len(cols)}

	n, err := BulkInsert(context.Background(), q, "t", cols, makeRows(5000, len(cols)))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), n)

	perStmt := SQLite.MaxParams() / len(cols)
	require.Len(t, q.queries, 2)
	assert.Equal(t, []int{perStmt * len(cols), (5000 - perStmt) * len(cols)}, q.args)
	for _, got := range q.args {
		assert.LessOrEqual(t, got, SQLite.MaxParams())
	}
}

func TestBulkInsert_PostgresPlaceholders(t *testing.T) {
	q := &recordingQuerier{dialect: Postgres, cols: 2}
	_, err := BulkInsert(context.Background(), q, "t", []string{"a", "b"}, makeRows(2, 2))
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (a,b) VALUES ($1,$2),($3,$4)", q.queries[0])
}

func TestBulkInsert_Validation(t *testing.T) {
	q := &recordingQuerier{dialect: MySQL, cols: 2}
	ctx := context.Background()

	n, err := BulkInsert(ctx, q, "t", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
	_, err = BulkInsert(ctx, q, "t", nil, makeRows(1, 2))
	assert.Error(t, err)
	_, err = BulkInsert(ctx, q, "t", []string{"a", "b"}, [][]any{{1, 2}, {3}})
	assert.ErrorContains(t, err, "row 1")
	assert.Empty(t, q.queries)
}

func TestBulkInsert_SQLite(t *testing.T) {
	h := NewTestHelper(t)
	ctx := context.Background()
	dob := time.Date(1990, 5, 5, 0, 0, 0, 0, time.UTC)

	err := h.Pool().WithConn(ctx, func(c *Conn) error {
		n, err := BulkInsert(ctx, c, "massive_user_list",
			[]string{"first_name", "last_name", "date_of_birth"},
			[][]any{{"A", "One", dob}, {"B", "Two", dob}, {"C", "Three", dob}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		return nil
	})
	require.NoError(t, err)
	h.AssertRowCount("massive_user_list", 3)
}

func TestBulkStatement(t *testing.T) {
	query, args := bulkStatement("t", []string{"a"}, [][]any{{1}, {2}, {3}})
	assert.Equal(t, "INSERT INTO t (a) VALUES (?),(?),(?)", query)
	assert.Equal(t, []any{1, 2, 3}, args)
	assert.Equal(t, 3, strings.Count(query, "?"))
}
