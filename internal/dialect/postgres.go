package dialect

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Jeanphaie/lk-invest/internal"
	"github.com/Jeanphaie/lk-invest/internal/util"
	"github.com/lib/pq"
)

type postgres struct{}

var _ Dialect = (*postgres)(nil)

func (p *postgres) Name() string {
	return "postgres"
}

func (p *postgres) DriverName() string {
	return "postgres"
}

func (p *postgres) DSN(u *url.URL) (string, error) {
	c := *u
	c.Scheme = "postgresql"
	// an empty host is a unix socket given by the host parameter
	if c.Host != "" && c.Port() == "" {
		c.Host = c.Host + ":5432"
	}
	var reencode bool
	q := c.Query()
	if !q.Has("application_name") {
		q.Set("application_name", "lki-import")
		reencode = true
	}
	if util.IsLocalhost(c.Host) && !q.Has("sslmode") {
		q.Set("sslmode", "disable")
		reencode = true
	}
	if reencode {
		c.RawQuery = q.Encode()
	}
	return c.String(), nil
}

func (p *postgres) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (p *postgres) InsertSQL(stmt Insert) (string, error) {
	if err := checkInsert(stmt); err != nil {
		return "", err
	}
	var sql strings.Builder
	sql.WriteString("INSERT INTO ")
	sql.WriteString(p.QuoteIdentifier(stmt.Table))
	sql.WriteString(" (")
	sql.WriteString(quoteColumns(p, stmt.Columns))
	sql.WriteString(") VALUES (")
	for i := range stmt.Columns {
		if i > 0 {
			sql.WriteString(", ")
		}
		// the column type decides between json and jsonb, the parameter is sent as text
		sql.WriteString("$" + strconv.Itoa(i+1))
	}
	sql.WriteString(")")
	switch stmt.OnConflict {
	case internal.ConflictSkip:
		sql.WriteString(fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", p.QuoteIdentifier(stmt.PrimaryKey)))
	case internal.ConflictUpdate:
		columns := updatable(stmt)
		if len(columns) == 0 {
			sql.WriteString(fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", p.QuoteIdentifier(stmt.PrimaryKey)))
			break
		}
		sql.WriteString(fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET ", p.QuoteIdentifier(stmt.PrimaryKey)))
		for i, name := range columns {
			if i > 0 {
				sql.WriteString(", ")
			}
			col := p.QuoteIdentifier(name)
			sql.WriteString(col + " = EXCLUDED." + col)
		}
	}
	return sql.String(), nil
}

func init() {
	Register(&postgres{}, "postgres", "postgresql")
}
