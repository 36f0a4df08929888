package sqlmap

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrorClass groups driver errors by how a caller may react to them.
type ErrorClass int

const (
	ErrClassUnknown ErrorClass = iota
	ErrClassRetryable
	ErrClassConflict
	ErrClassReadonly
	ErrClassConstraint
	ErrClassConnection
)

func (c ErrorClass) String() string {
	switch c {
	case ErrClassRetryable:
		return "retryable"
	case ErrClassConflict:
		return "conflict"
	case ErrClassReadonly:
		return "readonly"
	case ErrClassConstraint:
		return "constraint"
	case ErrClassConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// Classify maps MySQL error numbers, SQLite result codes and Postgres
// SQLSTATEs onto an ErrorClass.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrClassUnknown
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return ErrClassConnection
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return classifyMySQL(me.Number)
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return classifyPostgres(pe.Code)
	}
	if code, ok := sqliteCode(err); ok {
		return classifySQLite(code)
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ErrClassConnection
	}
	return ErrClassUnknown
}

func classifyMySQL(n uint16) ErrorClass {
	switch n {
	case 1213, 1205: // deadlock, lock wait timeout
		return ErrClassRetryable
	case 1020: // record changed since last read
		return ErrClassConflict
	case 1290, 1792, 1836: // read-only server, read-only transaction, read-only mode
		return ErrClassReadonly
	case 1062, 1048, 1216, 1217, 1451, 1452:
		return ErrClassConstraint
	case 2006, 2013: // server gone, lost connection
		return ErrClassConnection
	}
	return ErrClassUnknown
}

func classifyPostgres(code string) ErrorClass {
	switch {
	case code == "40P01" || code == "55P03":
		return ErrClassRetryable
	case code == "40001":
		return ErrClassConflict
	case code == "25006":
		return ErrClassReadonly
	case strings.HasPrefix(code, "23"):
		return ErrClassConstraint
	case strings.HasPrefix(code, "08"):
		return ErrClassConnection
	}
	return ErrClassUnknown
}

func classifySQLite(code int) ErrorClass {
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return ErrClassRetryable
	case sqlite3.SQLITE_READONLY:
		return ErrClassReadonly
	case sqlite3.SQLITE_CONSTRAINT:
		return ErrClassConstraint
	case sqlite3.SQLITE_CANTOPEN:
		return ErrClassConnection
	}
	return ErrClassUnknown
}

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

// IsNotFound reports whether err means a single-row query found nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
