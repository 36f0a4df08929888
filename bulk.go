package sqlmap

import (
	"context"
	"fmt"
	"strings"
)

// BulkInsert inserts rows with multi-row INSERT ... VALUES statements, split so
// that no statement exceeds the dialect's bind parameter limit. It returns the
// total number of rows affected. No rows is a no-op.
func BulkInsert(ctx context.Context, q Querier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	colN := len(columns)
	if colN == 0 {
		return 0, fmt.Errorf("no columns")
	}
	for i, r := range rows {
		if len(r) != colN {
			return 0, fmt.Errorf("row %d has %d values, want %d", i, len(r), colN)
		}
	}

	perStmt := q.Dialect().MaxParams() / colN
	if perStmt < 1 {
		return 0, fmt.Errorf("%d columns exceed the parameter limit", colN)
	}

	var total int64
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		query, args := bulkStatement(table, columns, rows[start:end])
		res, err := q.Exec(ctx, q.Dialect().Rebind(query), args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func bulkStatement(table string, columns []string, rows [][]any) (string, []any) {
	placeOne := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"
	var b strings.Builder
	b.Grow(64 + len(rows)*(len(placeOne)+1))
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ","))
	b.WriteString(") VALUES ")
	args := make([]any, 0, len(rows)*len(columns))
	for i, r := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(placeOne)
		args = append(args, r...)
	}
	return b.String(), args
}
