package sqlmap

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// TestHelper wraps a migrated SQLite pool for tests.
type TestHelper struct {
	pool *Pool
	t    testing.TB
}

// NewTestHelper creates a migrated SQLite database in t.TempDir().
// The pool is closed when the test finishes.
func NewTestHelper(t testing.TB) *TestHelper {
	t.Helper()
	ctx := context.Background()
	pool, err := NewSQLiteTestPool(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite test pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })
	return &TestHelper{pool: pool, t: t}
}

// Pool returns the underlying pool
func (h *TestHelper) Pool() *Pool {
	return h.pool
}

// Exec runs a statement and fails the test on error.
func (h *TestHelper) Exec(query string, args ...any) int64 {
	h.t.Helper()
	var n int64
	err := h.pool.WithConn(context.Background(), func(c *Conn) error {
		res, err := c.Exec(context.Background(), query, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		h.t.Fatalf("exec %q: %v", query, err)
	}
	return n
}

// CountRows returns the number of rows in tableName
func (h *TestHelper) CountRows(tableName string) int {
	h.t.Helper()
	var count int
	err := h.pool.WithConn(context.Background(), func(c *Conn) error {
		return c.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)).Scan(&count)
	})
	if err != nil {
		h.t.Fatalf("Failed to count rows in %s: %v", tableName, err)
	}
	return count
}

// AssertRowCount asserts that a table has the expected number of rows
func (h *TestHelper) AssertRowCount(tableName string, expected int) {
	h.t.Helper()
	if actual := h.CountRows(tableName); actual != expected {
		h.t.Errorf("Expected %d rows in %s, got %d", expected, tableName, actual)
	}
}
