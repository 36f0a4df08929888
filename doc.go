// Package sqlmap is a thin data access layer over database/sql that maps
// query results onto Go values.
//
// # Overview
//
// sqlmap wraps sqlx and adds:
//   - Named parameters (:name) bound from structs, maps or Params
//   - Typed results: Query, QueryStream, QueryFirst, QueryFirstOrDefault
//   - Untyped results keyed by column name: QueryMaps
//   - Stored procedure calls that work on MySQL, Postgres and SQLite
//   - Scoped connections and transactions that always clean up
//   - Structured logging, OpenTelemetry spans and metrics on every statement
//
// # Quick Start
//
//	import "github.com/swiftkick/sqlmap"
//
//	type User struct {
//		ID        int64     `db:"id"`
//		FirstName string    `db:"first_name"`
//		LastName  string    `db:"last_name"`
//		Born      time.Time `db:"date_of_birth"`
//	}
//
//	ctx := context.Background()
//	pool, err := sqlmap.NewPool(ctx, sqlmap.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	err = pool.WithConn(ctx, func(c *sqlmap.Conn) error {
//		users, err := sqlmap.Query[User](ctx, c,
//			"SELECT * FROM massive_user_list WHERE date_of_birth > :dob",
//			sqlmap.Params{"dob": time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)})
//		if err != nil {
//			return err
//		}
//		fmt.Println(len(users))
//		return nil
//	})
//
// # Transactions
//
// WithinTx commits when the callback returns nil and rolls back when it
// returns an error or panics. Nothing is retried.
//
//	err = pool.WithinTx(ctx, func(tx *sqlmap.Tx) error {
//		_, err := sqlmap.Execute(ctx, tx, insertUser, users)
//		return err
//	})
//
// # Mapping
//
// Struct fields map to columns through their db tag, or the snake_case form of
// the field name. Columns without a field are skipped unless
// Config.StrictMapping is set. Non-struct types (string, int64, time.Time, any
// sql.Scanner) map from a single-column result.
//
// # Configuration
//
// Config can be filled in code or from SQLMAP_* environment variables
// (see ConfigFromEnv); LoadEnv reads a .env file first. Supported drivers are
// mysql (default), pgx and sqlite.
//
// # Observability
//
// Logging uses log/slog; the default handler writes JSON through zerolog to
// stderr. EnableTelemetry and EnableMetrics turn on OpenTelemetry spans
// (sqlmap.<operation>) and instruments (sqlmap_queries_total and friends).
package sqlmap
