package sqlmap

import (
	"strconv"
	"strings"
)

// Params is a set of named parameters built at run time.
type Params map[string]any

// Add sets name to value and returns p for chaining.
func (p Params) Add(name string, value any) Params {
	p[name] = value
	return p
}

// SelectBuilder assembles a SELECT whose WHERE clause depends on which
// parameters are present. Conditions use :name placeholders.
type SelectBuilder struct {
	columns []string
	table   string
	where   []string
	orderBy []string
	limit   *int
	offset  *int
	params  Params
}

// Select starts a SELECT query with the specified columns
func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns, params: Params{}}
}

// From specifies the table for the SELECT query
func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// Where adds a condition; params supplies the values it references.
func (b *SelectBuilder) Where(condition string, params Params) *SelectBuilder {
	b.where = append(b.where, condition)
	for k, v := range params {
		b.params[k] = v
	}
	return b
}

// WhereIf adds condition with name bound to value only when ok is true.
func (b *SelectBuilder) WhereIf(ok bool, condition, name string, value any) *SelectBuilder {
	if !ok {
		return b
	}
	b.where = append(b.where, condition)
	b.params[name] = value
	return b
}

// OrderBy adds an ORDER BY clause to the query
func (b *SelectBuilder) OrderBy(orderBy ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, orderBy...)
	return b
}

// Limit sets the LIMIT for the query
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = &limit
	return b
}

// Offset sets the OFFSET for the query
func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = &offset
	return b
}

// Build returns the named query and its parameters.
func (b *SelectBuilder) Build() (string, Params) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(b.columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*b.limit))
	}
	if b.offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(*b.offset))
	}
	params := make(Params, len(b.params))
	for k, v := range b.params {
		params[k] = v
	}
	return sb.String(), params
}
