package users

import (
	"fmt"
	"io"
	"time"
)

// DateLayout formats dates of birth in listings.
const DateLayout = "2006-01-02 15:04:05"

// WriteUser writes one "first\t\tlast\t\tdob" line.
func WriteUser(w io.Writer, u User) error {
	_, err := fmt.Fprintf(w, "%s\t\t%s\t\t%s\n", u.FirstName, u.LastName, u.DateOfBirth.Format(DateLayout))
	return err
}

// WriteList writes one line per user.
func WriteList(w io.Writer, list []User) error {
	for _, u := range list {
		if err := WriteUser(w, u); err != nil {
			return err
		}
	}
	return nil
}

// WriteRows writes column-keyed rows in the WriteList format.
func WriteRows(w io.Writer, rows []map[string]any) error {
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t\t%s\t\t%s\n",
			cell(r["first_name"]), cell(r["last_name"]), cell(r["date_of_birth"])); err != nil {
			return err
		}
	}
	return nil
}

// WriteNames writes one name per line.
func WriteNames(w io.Writer, names []string) error {
	for _, n := range names {
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(DateLayout)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
