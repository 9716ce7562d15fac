package dialect

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PingTimeout bounds the connectivity check done by Open.
var PingTimeout = 5 * time.Second

// Open resolves the dialect from the URL scheme and opens a handle restricted to a single connection.
// The caller owns the handle and must Close it.
func Open(ctx context.Context, urlstr string) (*sql.DB, Dialect, error) {
	d, u, err := ForURL(urlstr)
	if err != nil {
		return nil, nil, err
	}
	dsn, err := d.DSN(u)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create connection: %w", err)
	}
	if err := prepare(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, d, nil
}

func prepare(ctx context.Context, db *sql.DB) error {
	// every table and row goes through the same connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("unable to ping db: %w", err)
	}
	return nil
}
