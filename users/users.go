// Package users holds the user listing record and the statements that read
// and write it.
package users

import (
	"context"
	"strings"
	"time"

	"github.com/swiftkick/sqlmap"
)

// Table is the user listing table created by the migrations.
const Table = "massive_user_list"

// LastNameProcedure returns every last name in Table.
const LastNameProcedure = "last_name_list"

// User is one row of Table. ID is assigned by the database on insert.
type User struct {
	ID          int64     `db:"id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	PhoneNumber string    `db:"phone_number"`
	UserName    string    `db:"user_name"`
	DateOfBirth time.Time `db:"date_of_birth"`
	City        string    `db:"city"`
	State       string    `db:"state"`
	ZipCode     string    `db:"zip_code"`
}

// Columns lists the insertable columns in statement order.
var Columns = []string{
	"first_name", "last_name", "phone_number", "user_name",
	"date_of_birth", "city", "state", "zip_code",
}

const (
	selectColumns = "id, first_name, last_name, phone_number, user_name, date_of_birth, city, state, zip_code"

	selectAll = "SELECT " + selectColumns + " FROM " + Table

	selectBornAfter = selectAll + " WHERE date_of_birth > :dateOfBirth ORDER BY id"

	insertUser = "INSERT INTO " + Table +
		" (first_name, last_name, phone_number, user_name, date_of_birth, city, state, zip_code)" +
		" VALUES (:first_name, :last_name, :phone_number, :user_name, :date_of_birth, :city, :state, :zip_code)"

	updateDateOfBirth = "UPDATE " + Table + " SET date_of_birth = :dateOfBirth WHERE first_name = :firstName"

	deleteByLastName = "DELETE FROM " + Table + " WHERE last_name = :lastName"
)

// Sample is the record the insert and transaction demos write.
func Sample() User {
	return User{
		FirstName:   "Jim",
		LastName:    "Bob",
		PhoneNumber: "757-867-5309",
		UserName:    "COMPUTER/JimBob",
		DateOfBirth: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		City:        "Chesapeake",
		State:       "Virginia",
		ZipCode:     "23320",
	}
}

// List returns every user, buffered.
func List(ctx context.Context, q sqlmap.Querier) ([]User, error) {
	return sqlmap.Query[User](ctx, q, selectAll+" ORDER BY id", nil)
}

// Stream calls fn for each user as rows arrive.
func Stream(ctx context.Context, q sqlmap.Querier, fn func(User) error) error {
	return sqlmap.QueryStream(ctx, q, selectAll+" ORDER BY id", nil, fn)
}

// BornAfter returns users whose date of birth is strictly after t.
func BornAfter(ctx context.Context, q sqlmap.Querier, t time.Time) ([]User, error) {
	return sqlmap.Query[User](ctx, q, selectBornAfter, sqlmap.Params{"dateOfBirth": t})
}

// Criteria filters Search. Blank fields are ignored.
type Criteria struct {
	FirstName string
	LastName  string
}

// SearchQuery builds the statement and parameters Search runs.
// Values are bound as given; only the blank check ignores surrounding space.
func SearchQuery(c Criteria) (string, sqlmap.Params) {
	return sqlmap.Select(strings.Split(selectColumns, ", ")...).
		From(Table).
		WhereIf(strings.TrimSpace(c.FirstName) != "", "first_name = :firstName", "firstName", c.FirstName).
		WhereIf(strings.TrimSpace(c.LastName) != "", "last_name = :lastName", "lastName", c.LastName).
		OrderBy("id").
		Build()
}

// Search returns users matching every non-blank field of c.
func Search(ctx context.Context, q sqlmap.Querier, c Criteria) ([]User, error) {
	query, params := SearchQuery(c)
	return sqlmap.Query[User](ctx, q, query, params)
}

// First returns the lowest-id user or sql.ErrNoRows.
func First(ctx context.Context, q sqlmap.Querier) (User, error) {
	return sqlmap.QueryFirst[User](ctx, q, selectAll+" ORDER BY id LIMIT 1", nil)
}

// FirstOrDefault is First with a zero User for an empty table.
func FirstOrDefault(ctx context.Context, q sqlmap.Querier) (User, error) {
	return sqlmap.QueryFirstOrDefault[User](ctx, q, selectAll+" ORDER BY id LIMIT 1", nil)
}

// Insert writes u and returns the generated id. u.ID is ignored.
func Insert(ctx context.Context, q sqlmap.Querier, u User) (int64, error) {
	return sqlmap.ExecInsert(ctx, q, insertUser, u, "id")
}

// UpdateDateOfBirth sets the date of birth of every user named firstName.
func UpdateDateOfBirth(ctx context.Context, q sqlmap.Querier, firstName string, dob time.Time) (int64, error) {
	return sqlmap.Execute(ctx, q, updateDateOfBirth, sqlmap.Params{"dateOfBirth": dob, "firstName": firstName})
}

// DeleteByLastName deletes every user with lastName.
func DeleteByLastName(ctx context.Context, q sqlmap.Querier, lastName string) (int64, error) {
	return sqlmap.Execute(ctx, q, deleteByLastName, sqlmap.Params{"lastName": lastName})
}

// LastNames calls the last_name_list procedure.
func LastNames(ctx context.Context, q sqlmap.Querier) ([]string, error) {
	return sqlmap.QueryProcedure[string](ctx, q, LastNameProcedure)
}

// Repeat returns n copies of u, each born one day after the previous.
func Repeat(u User, n int) []User {
	out := make([]User, n)
	for i := range out {
		out[i] = u
		out[i].DateOfBirth = u.DateOfBirth.AddDate(0, 0, i)
	}
	return out
}

// InsertRepeated inserts n copies of u (see Repeat) in one transaction that
// commits once at the end. Nothing is kept if any insert fails.
func InsertRepeated(ctx context.Context, pool *sqlmap.Pool, u User, n int) (int64, error) {
	var inserted int64
	err := pool.WithinTx(ctx, func(tx *sqlmap.Tx) error {
		var err error
		inserted, err = sqlmap.Execute(ctx, tx, insertUser, Repeat(u, n))
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// InsertBatch inserts batch with multi-row INSERT statements.
func InsertBatch(ctx context.Context, q sqlmap.Querier, batch []User) (int64, error) {
	rows := make([][]any, len(batch))
	for i, u := range batch {
		rows[i] = []any{u.FirstName, u.LastName, u.PhoneNumber, u.UserName, u.DateOfBirth, u.City, u.State, u.ZipCode}
	}
	return sqlmap.BulkInsert(ctx, q, Table, Columns, rows)
}

// ListRows returns every user as a column-keyed map.
func ListRows(ctx context.Context, q sqlmap.Querier) ([]map[string]any, error) {
	return sqlmap.QueryMaps(ctx, q, selectAll+" ORDER BY id", nil)
}
