package sqlmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindNamed_Params(t *testing.T) {
	q, args, err := bindNamed(MySQL, "SELECT * FROM t WHERE a = :a AND b = :b", Params{"a": 1, "b": "x"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = ? AND b = ?", q)
	assert.Equal(t, []any{1, "x"}, args)
}

func TestBindNamed_RepeatedName(t *testing.T) {
	q, args, err := bindNamed(MySQL, "SELECT * FROM t WHERE a = :v OR b = :v", map[string]any{"v": 7})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = ? OR b = ?", q)
	assert.Equal(t, []any{7, 7}, args)
}

func TestBindNamed_Struct(t *testing.T) {
	type row struct {
		FirstName string `db:"first_name"`
		Born      time.Time
	}
	born := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	q, args, err := bindNamed(Postgres,
		"INSERT INTO t (first_name, born) VALUES (:first_name, :born)",
		row{FirstName: "Jim", Born: born})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (first_name, born) VALUES ($1, $2)", q)
	assert.Equal(t, []any{"Jim", born}, args)
}

func TestBindNamed_ExpandsSlices(t *testing.T) {
	q, args, err := bindNamed(Postgres, "SELECT * FROM t WHERE a = :a AND id IN (:ids)", Params{"a": 1, "ids": []int{4, 5}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND id IN ($2, $3)", q)
	assert.Equal(t, []any{1, 4, 5}, args)
}

func TestBindNamed_NilArg(t *testing.T) {
	q, args, err := bindNamed(Postgres, "SELECT 1 WHERE ? = ?", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE $1 = $2", q)
	assert.Nil(t, args)
}

func TestBindNamed_Errors(t *testing.T) {
	_, _, err := bindNamed(MySQL, "SELECT :missing", Params{"other": 1})
	assert.Error(t, err)

	_, _, err = bindNamed(MySQL, "SELECT :a", []Params{{"a": 1}})
	assert.ErrorContains(t, err, "batch")
}

func TestIsBatch(t *testing.T) {
	assert.True(t, isBatch([]Params{}))
	assert.True(t, isBatch([2]map[string]any{}))
	assert.False(t, isBatch([]byte("x")))
	assert.False(t, isBatch(Params{}))
	assert.False(t, isBatch(nil))
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ID":          "id",
		"FirstName":   "first_name",
		"DateOfBirth": "date_of_birth",
		"UserID":      "user_id",
		"HTTPServer":  "http_server",
		"zip":         "zip",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func BenchmarkBindNamed(b *testing.B) {
	type row struct {
		FirstName string `db:"first_name"`
		LastName  string `db:"last_name"`
		City      string `db:"city"`
	}
	r := row{FirstName: "Jim", LastName: "Bob", City: "Chesapeake"}
	const q = "INSERT INTO t (first_name, last_name, city) VALUES (:first_name, :last_name, :city)"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := bindNamed(MySQL, q, r); err != nil {
			b.Fatal(err)
		}
	}
}
