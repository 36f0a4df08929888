package sqlmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	cases := map[string]Dialect{
		"mysql":      MySQL,
		"MariaDB":    MySQL,
		"sqlite":     SQLite,
		"sqlite3":    SQLite,
		"pgx":        Postgres,
		"postgresql": Postgres,
	}
	for name, want := range cases {
		got, err := ParseDialect(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseDialect("mssql")
	assert.Error(t, err)
}

func TestDialectFromConfig(t *testing.T) {
	d, err := dialectFromConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, MySQL, d)

	d, err = dialectFromConfig(Config{Driver: "sqlmock"})
	require.NoError(t, err)
	assert.Equal(t, MySQL, d)

	d, err = dialectFromConfig(Config{Driver: "sqlmock", Dialect: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
}

func TestDialect_Rebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ?"
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", Postgres.Rebind(q))
}

func TestDialect_CallProcedure(t *testing.T) {
	assert.Equal(t, "CALL last_name_list()", MySQL.CallProcedure("last_name_list"))
	assert.Equal(t, "SELECT * FROM last_name_list()", Postgres.CallProcedure("last_name_list"))
	assert.Equal(t, "SELECT * FROM last_name_list", SQLite.CallProcedure("last_name_list"))
}

func TestDialect_SystemAndLimits(t *testing.T) {
	assert.Equal(t, "mysql", MySQL.System())
	assert.Equal(t, "postgresql", Postgres.System())
	assert.Equal(t, "sqlite", SQLite.System())
	assert.Equal(t, 32766, SQLite.MaxParams())
	assert.Equal(t, 65535, MySQL.MaxParams())
	assert.Equal(t, "Dialect(9)", Dialect(9).String())
}
