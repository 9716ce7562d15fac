package util

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/shopmonkeyus/go-common/logger"
)

// Execer is implemented by *sql.DB, *sql.Tx and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Executor runs one parameterized statement.
type Executor func(sql string, args ...any) error

// SQLExecuter returns a wrapper around a SQL connection or transaction that can execute statements or log them in dry-run mode
func SQLExecuter(ctx context.Context, log logger.Logger, db Execer, dryRun bool) Executor {
	return func(sql string, args ...any) error {
		if dryRun {
			log.Info("[dry-run] %s (%d args)", sql, len(args))
			return nil
		}
		log.Trace("executing: %s", strings.TrimRight(sql, "\n"))
		if _, err := db.ExecContext(ctx, sql, args...); err != nil {
			return err
		}
		return nil
	}
}

// ToUserPass returns a user:pass string from a URL
func ToUserPass(u *url.URL) string {
	var dsn strings.Builder
	user := u.User.Username()
	pass, ok := u.User.Password()
	dsn.WriteString(user)
	if ok {
		dsn.WriteString(":")
		dsn.WriteString(pass)
	}
	return dsn.String()
}
