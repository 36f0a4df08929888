package sqlmap

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
)

// namedBinder compiles :name queries to '?' form. It never touches a connection;
// only its mapper is used.
var namedBinder = &sqlx.DB{Mapper: reflectx.NewMapperFunc("db", snakeCase)}

// bindNamed turns query plus a parameter object (struct, map or Params) into
// a positional query for d. Slice values expand into IN lists.
func bindNamed(d Dialect, query string, arg any) (string, []any, error) {
	if arg == nil {
		return d.Rebind(query), nil, nil
	}
	if p, ok := arg.(Params); ok {
		arg = map[string]any(p)
	}
	if isBatch(arg) {
		return "", nil, fmt.Errorf("bind: %T is a batch, use Execute", arg)
	}
	bound, args, err := namedBinder.BindNamed(query, arg)
	if err != nil {
		return "", nil, fmt.Errorf("bind: %w", err)
	}
	bound, args, err = sqlx.In(bound, args...)
	if err != nil {
		return "", nil, fmt.Errorf("bind: %w", err)
	}
	return d.Rebind(bound), args, nil
}

// isBatch reports whether arg is a list of parameter objects.
func isBatch(arg any) bool {
	if arg == nil {
		return false
	}
	v := reflect.ValueOf(arg)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return false
	}
	// []byte is a value, not a batch
	return v.Type().Elem().Kind() != reflect.Uint8
}

// snakeCase maps Go field names onto column names: FirstName -> first_name, ID -> id.
func snakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
