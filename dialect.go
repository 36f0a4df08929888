package sqlmap

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect identifies the SQL flavour spoken by the connected database.
type Dialect int

const (
	MySQL Dialect = iota
	SQLite
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect accepts dialect or driver names.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return MySQL, fmt.Errorf("unknown dialect %q", name)
}

func dialectFromConfig(c Config) (Dialect, error) {
	if c.Dialect != "" {
		return ParseDialect(c.Dialect)
	}
	if c.driverName() == "sqlmock" {
		return MySQL, nil
	}
	return ParseDialect(c.driverName())
}

func (d Dialect) bindType() int {
	if d == Postgres {
		return sqlx.DOLLAR
	}
	return sqlx.QUESTION
}

// Rebind converts '?' placeholders to the dialect's placeholder style.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bindType(), query)
}

// CallProcedure returns the statement that invokes a parameterless stored procedure.
// SQLite has no procedures; the migration installs a view under the same name.
func (d Dialect) CallProcedure(name string) string {
	switch d {
	case Postgres:
		return "SELECT * FROM " + name + "()"
	case SQLite:
		return "SELECT * FROM " + name
	default:
		return "CALL " + name + "()"
	}
}

// System is the OpenTelemetry db.system value.
func (d Dialect) System() string {
	if d == Postgres {
		return "postgresql"
	}
	return d.String()
}

// MaxParams is the largest number of bind parameters a single statement may carry.
func (d Dialect) MaxParams() int {
	if d == SQLite {
		return 32766
	}
	return 65535
}
