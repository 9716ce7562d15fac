package internal

import (
	"context"
	"fmt"
	"strings"
)

// ConflictPolicy decides what happens when an imported row collides with an existing primary key.
type ConflictPolicy string

const (
	// ConflictError inserts plainly and lets the database reject duplicates.
	ConflictError ConflictPolicy = "error"
	// ConflictSkip keeps the existing row.
	ConflictSkip ConflictPolicy = "skip"
	// ConflictUpdate overwrites the existing row with the imported columns.
	ConflictUpdate ConflictPolicy = "update"
)

// ParseConflictPolicy parses the value of the --on-conflict flag. An empty value is ConflictError.
func ParseConflictPolicy(val string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(val))) {
	case "", ConflictError:
		return ConflictError, nil
	case ConflictSkip:
		return ConflictSkip, nil
	case ConflictUpdate:
		return ConflictUpdate, nil
	}
	return "", fmt.Errorf("invalid conflict policy %q, expected one of: error, skip, update", val)
}

// ImporterConfig is the configuration for an import run.
type ImporterConfig struct {

	// Context for the importer.
	Context context.Context

	// RunID identifies the import session in logs.
	RunID string

	// Manifest is the ordered list of tables to import.
	Manifest *Manifest

	// DryRun is true if the importer should parse everything but not touch the database.
	DryRun bool

	// Truncate deletes the existing rows of each table, inside the table's transaction, before importing.
	Truncate bool

	// OnConflict is the primary key conflict policy.
	OnConflict ConflictPolicy

	// Metrics is optional.
	Metrics *Metrics

	// Progress is called before each table with its position in the manifest. Optional.
	Progress func(table string, index int, total int)
}

// ExporterConfig is the configuration for an export run.
type ExporterConfig struct {

	// Context for the exporter.
	Context context.Context

	// Manifest is the ordered list of tables to export.
	Manifest *Manifest

	// Dir is the folder where the export files are written.
	Dir string

	// Gzip writes <table>.json.gz instead of <table>.json.
	Gzip bool
}
