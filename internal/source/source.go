package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrNotFound is returned by Open when the table has no export file.
var ErrNotFound = errors.New("export file not found")

// Source is a location holding one export file per table.
type Source interface {
	// Open returns the name and stream of the export file for the table, or ErrNotFound.
	Open(ctx context.Context, table string) (string, io.ReadCloser, error)

	// String describes the location for logging.
	String() string
}

// Candidates returns the export file names tried for a table, in order.
func Candidates(table string) []string {
	return []string{table + ".json", table + ".json.gz"}
}

// New returns the source for a location: s3://bucket/prefix, file:///dir or a plain directory path.
func New(ctx context.Context, location string) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("required export location missing")
	}
	if strings.Contains(location, "://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("unable to parse url: %w", err)
		}
		switch u.Scheme {
		case "s3":
			return NewS3(ctx, u)
		case "file":
			return NewDir(u.Path)
		default:
			return nil, fmt.Errorf("unsupported export location protocol: %s", u.Scheme)
		}
	}
	return NewDir(location)
}
