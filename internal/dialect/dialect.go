package dialect

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Jeanphaie/lk-invest/internal"
)

// Insert describes a single-row INSERT.
type Insert struct {
	Table      string
	Columns    []string
	JSON       []bool // JSON[i] is true if Columns[i] is bound as a JSON value
	PrimaryKey string
	OnConflict internal.ConflictPolicy
}

// Dialect renders SQL for one database engine.
type Dialect interface {
	// Name of the dialect, also the URL scheme.
	Name() string

	// DriverName is the database/sql driver name.
	DriverName() string

	// DSN converts the connection URL into the driver connection string.
	DSN(u *url.URL) (string, error)

	// QuoteIdentifier quotes a table or column name.
	QuoteIdentifier(name string) string

	// InsertSQL renders the parameterized statement. Arguments bind in column order.
	InsertSQL(stmt Insert) (string, error)
}

var dialects = map[string]Dialect{}

// Register registers a dialect for one or more URL schemes.
func Register(d Dialect, schemes ...string) {
	for _, scheme := range schemes {
		dialects[scheme] = d
	}
}

// Schemes returns the registered URL schemes.
func Schemes() []string {
	var res []string
	for scheme := range dialects {
		res = append(res, scheme)
	}
	sort.Strings(res)
	return res
}

// ForURL returns the dialect registered for the URL scheme.
func ForURL(urlstr string) (Dialect, *url.URL, error) {
	u, err := url.Parse(urlstr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	d := dialects[u.Scheme]
	if d == nil {
		return nil, nil, fmt.Errorf("no database driver registered for protocol %q, expected one of: %s", u.Scheme, strings.Join(Schemes(), ", "))
	}
	return d, u, nil
}

// DeleteAllSQL returns the statement clearing the table.
func DeleteAllSQL(d Dialect, table string) string {
	return "DELETE FROM " + d.QuoteIdentifier(table)
}

// SelectAllSQL returns the statement reading every row of the table.
func SelectAllSQL(d Dialect, table string) string {
	return "SELECT * FROM " + d.QuoteIdentifier(table)
}

func quoteColumns(d Dialect, columns []string) string {
	quoted := make([]string, len(columns))
	for i, name := range columns {
		quoted[i] = d.QuoteIdentifier(name)
	}
	return strings.Join(quoted, ", ")
}

func checkInsert(stmt Insert) error {
	if len(stmt.Columns) == 0 {
		return fmt.Errorf("no columns to insert into %s", stmt.Table)
	}
	if len(stmt.JSON) != 0 && len(stmt.JSON) != len(stmt.Columns) {
		return fmt.Errorf("json flags (%d) do not match columns (%d)", len(stmt.JSON), len(stmt.Columns))
	}
	switch stmt.OnConflict {
	case "", internal.ConflictError:
	case internal.ConflictSkip, internal.ConflictUpdate:
		if stmt.PrimaryKey == "" {
			return fmt.Errorf("conflict policy %s requires a primary key for table %s", stmt.OnConflict, stmt.Table)
		}
	default:
		return fmt.Errorf("invalid conflict policy %q", stmt.OnConflict)
	}
	return nil
}

func isJSON(stmt Insert, i int) bool {
	return len(stmt.JSON) > i && stmt.JSON[i]
}

// updatable returns the columns to overwrite on conflict, i.e. all but the primary key.
func updatable(stmt Insert) []string {
	var res []string
	for _, name := range stmt.Columns {
		if name != stmt.PrimaryKey {
			res = append(res, name)
		}
	}
	return res
}

func unsupportedConflict(d Dialect, stmt Insert) error {
	if stmt.OnConflict == internal.ConflictSkip || stmt.OnConflict == internal.ConflictUpdate {
		return fmt.Errorf("conflict policy %s is not supported by %s", stmt.OnConflict, d.Name())
	}
	return nil
}

// CheckConflict returns an error if the dialect cannot apply the conflict policy to the table.
func CheckConflict(d Dialect, table string, primaryKey string, policy internal.ConflictPolicy) error {
	column := primaryKey
	if column == "" {
		column = "id"
	}
	_, err := d.InsertSQL(Insert{Table: table, Columns: []string{column}, PrimaryKey: primaryKey, OnConflict: policy})
	return err
}
