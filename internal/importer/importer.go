package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jeanphaie/lk-invest/internal"
	"github.com/Jeanphaie/lk-invest/internal/dialect"
	"github.com/Jeanphaie/lk-invest/internal/source"
	"github.com/Jeanphaie/lk-invest/internal/util"
	"github.com/shopmonkeyus/go-common/logger"
)

// Status is the outcome of one table.
type Status string

const (
	StatusImported Status = "imported"
	StatusSkipped  Status = "skipped"
	StatusDryRun   Status = "dry-run"
	StatusFailed   Status = "failed"
)

// TableResult is the outcome of one table.
type TableResult struct {
	Table       string
	File        string
	Fingerprint string
	Status      Status
	Rows        int
	Duration    time.Duration
}

// Result summarizes a run. On error it holds the tables processed so far, the failed one last.
type Result struct {
	Tables   []TableResult
	Duration time.Duration
}

// Rows returns the number of rows inserted (or that would have been in dry-run).
func (r *Result) Rows() int {
	var total int
	for _, t := range r.Tables {
		total += t.Rows
	}
	return total
}

// Count returns the number of tables with the status.
func (r *Result) Count(status Status) int {
	var total int
	for _, t := range r.Tables {
		if t.Status == status {
			total++
		}
	}
	return total
}

// Run imports every table of the manifest, in order, from the source into the database.
// Each table is inserted in its own transaction committed after its last line; any error stops the run
// and rolls back the current table. Tables committed before the error stay committed.
// db may be nil in dry-run mode. The caller owns db.
func Run(logger logger.Logger, config internal.ImporterConfig, db *sql.DB, d dialect.Dialect, src source.Source) (*Result, error) {
	started := time.Now()
	if config.Manifest == nil {
		return nil, fmt.Errorf("no manifest configured")
	}
	if !config.DryRun && db == nil {
		return nil, fmt.Errorf("no database connection")
	}
	if config.OnConflict == "" {
		config.OnConflict = internal.ConflictError
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	if config.RunID != "" {
		logger = logger.WithPrefix("[" + config.RunID + "]")
	}
	for _, spec := range config.Manifest.Tables {
		if err := dialect.CheckConflict(d, spec.Name, spec.PrimaryKey, config.OnConflict); err != nil {
			return nil, err
		}
	}
	result := &Result{}
	defer func() {
		result.Duration = time.Since(started)
	}()
	for i, spec := range config.Manifest.Tables {
		if config.Progress != nil {
			config.Progress(spec.Name, i, len(config.Manifest.Tables))
		}
		tstarted := time.Now()
		tr := TableResult{Table: spec.Name}
		name, rc, err := src.Open(config.Context, spec.Name)
		if err != nil {
			if errors.Is(err, source.ErrNotFound) {
				logger.Info("file for table %s not found in %s, skipping", spec.Name, src)
				tr.Status = StatusSkipped
				result.Tables = append(result.Tables, tr)
				config.Metrics.Table(spec.Name, string(StatusSkipped), 0)
				continue
			}
			return result, fmt.Errorf("table %s: %w", spec.Name, err)
		}
		reader, err := util.NewLineReader(name, rc)
		if err != nil {
			return result, fmt.Errorf("table %s: %w", spec.Name, err)
		}
		tr.File = name
		logger.Info("importing %s into %s", name, spec.Name)
		count, err := importTable(logger, config, db, d, spec, reader)
		if cerr := reader.Close(); cerr != nil {
			logger.Debug("error closing %s: %s", name, cerr)
		}
		tr.Fingerprint = reader.Fingerprint()
		tr.Duration = time.Since(tstarted)
		if err != nil {
			tr.Status = StatusFailed
			result.Tables = append(result.Tables, tr)
			config.Metrics.Table(spec.Name, string(StatusFailed), tr.Duration.Seconds())
			return result, fmt.Errorf("table %s: %w", spec.Name, err)
		}
		tr.Rows = count
		if config.DryRun {
			tr.Status = StatusDryRun
		} else {
			tr.Status = StatusImported
			config.Metrics.Rows(spec.Name, count)
		}
		config.Metrics.Table(spec.Name, string(tr.Status), tr.Duration.Seconds())
		result.Tables = append(result.Tables, tr)
		logger.Debug("file %s: %d lines, fingerprint %s", name, reader.Count(), tr.Fingerprint)
		logger.Info("imported %d %s records in %v", count, spec.Name, tr.Duration)
	}
	logger.Info("imported %d records from %d tables in %s", result.Rows(), result.Count(StatusImported)+result.Count(StatusDryRun), time.Since(started))
	return result, nil
}

// importTable inserts every line of the reader and returns the number of rows inserted. Nothing is
// committed unless every line was inserted.
func importTable(logger logger.Logger, config internal.ImporterConfig, db *sql.DB, d dialect.Dialect, spec internal.TableSpec, reader *util.LineReader) (int, error) {
	ctx := config.Context
	var executor util.Executor
	var tx *sql.Tx
	var success bool
	if config.DryRun {
		executor = util.SQLExecuter(ctx, logger, nil, true)
	} else {
		var err error
		tx, err = db.BeginTx(ctx, nil)
		if err != nil {
			return 0, fmt.Errorf("unable to start transaction: %w", err)
		}
		defer func() {
			if !success {
				logger.Debug("rolling back %s", spec.Name)
				tx.Rollback()
			}
		}()
		executor = util.SQLExecuter(ctx, logger, tx, false)
	}
	if config.Truncate {
		if err := executor(dialect.DeleteAllSQL(d, spec.Name)); err != nil {
			return 0, fmt.Errorf("unable to delete existing rows: %w", err)
		}
	}
	var count int
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		line, ok, err := reader.Next()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}
		rec, err := ParseRecord(line, spec)
		if err != nil {
			return count, fmt.Errorf("%s:%d: %w", reader.Name(), reader.Line(), err)
		}
		stmt, err := d.InsertSQL(dialect.Insert{
			Table:      spec.Name,
			Columns:    rec.Columns(),
			JSON:       rec.JSONFlags(),
			PrimaryKey: spec.PrimaryKey,
			OnConflict: config.OnConflict,
		})
		if err != nil {
			return count, fmt.Errorf("%s:%d: %w", reader.Name(), reader.Line(), err)
		}
		if err := executor(stmt, rec.Values()...); err != nil {
			return count, fmt.Errorf("%s:%d: unable to insert: %w", reader.Name(), reader.Line(), err)
		}
		count++
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			return count, fmt.Errorf("unable to commit transaction: %w", err)
		}
	}
	success = true
	return count, nil
}
