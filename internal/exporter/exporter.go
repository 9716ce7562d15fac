package exporter

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Jeanphaie/lk-invest/internal"
	"github.com/Jeanphaie/lk-invest/internal/dialect"
	"github.com/Jeanphaie/lk-invest/internal/util"
	"github.com/cespare/xxhash/v2"
	"github.com/shopmonkeyus/go-common/logger"
)

// TableResult is the outcome of one exported table.
type TableResult struct {
	Table       string
	File        string
	Fingerprint string
	Rows        int
}

// Run writes one NDJSON file per manifest table into the configured directory.
// The files it writes are readable by the importer unchanged.
func Run(logger logger.Logger, config internal.ExporterConfig, db *sql.DB, d dialect.Dialect) ([]TableResult, error) {
	if config.Manifest == nil {
		return nil, fmt.Errorf("no manifest configured")
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("required export directory missing")
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create export directory: %w", err)
	}
	if err := util.CheckDirWritable(config.Dir); err != nil {
		return nil, err
	}
	started := time.Now()
	var results []TableResult
	for _, spec := range config.Manifest.Tables {
		tstarted := time.Now()
		res, err := exportTable(config, db, d, spec)
		if err != nil {
			return results, fmt.Errorf("table %s: %w", spec.Name, err)
		}
		results = append(results, *res)
		logger.Info("exported %d %s records to %s in %v", res.Rows, spec.Name, res.File, time.Since(tstarted))
	}
	logger.Info("exported %d tables in %v", len(results), time.Since(started))
	return results, nil
}

func exportTable(config internal.ExporterConfig, db *sql.DB, d dialect.Dialect, spec internal.TableSpec) (*TableResult, error) {
	name := spec.Name + ".json"
	if config.Gzip {
		name += ".gz"
	}
	fn := filepath.Join(config.Dir, name)
	tmp, err := os.CreateTemp(config.Dir, "."+name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("unable to create temp file: %w", err)
	}
	var success bool
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	var out io.Writer = tmp
	var gz *gzip.Writer
	if config.Gzip {
		gz = gzip.NewWriter(tmp)
		out = gz
	}
	digest := xxhash.New()
	w := bufio.NewWriter(io.MultiWriter(out, digest))
	count, err := writeRows(config.Context, w, db, d, spec)
	if err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return nil, err
		}
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), fn); err != nil {
		return nil, fmt.Errorf("unable to rename %s: %w", tmp.Name(), err)
	}
	success = true
	return &TableResult{Table: spec.Name, File: fn, Fingerprint: fmt.Sprintf("%016x", digest.Sum64()), Rows: count}, nil
}

func writeRows(ctx context.Context, w io.Writer, db *sql.DB, d dialect.Dialect, spec internal.TableSpec) (int, error) {
	rows, err := db.QueryContext(ctx, dialect.SelectAllSQL(d, spec.Name))
	if err != nil {
		return 0, fmt.Errorf("unable to query: %w", err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	var count int
	var line bytes.Buffer
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, fmt.Errorf("unable to scan row %d: %w", count+1, err)
		}
		line.Reset()
		if err := encodeRow(&line, columns, values, spec); err != nil {
			return count, fmt.Errorf("row %d: %w", count+1, err)
		}
		line.WriteByte('\n')
		if _, err := w.Write(line.Bytes()); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}
	return count, nil
}

// encodeRow writes the row as one JSON object with keys in column order.
func encodeRow(buf *bytes.Buffer, columns []string, values []any, spec internal.TableSpec) error {
	buf.WriteByte('{')
	for i, column := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(util.JSONStringify(column))
		buf.WriteByte(':')
		if err := encodeValue(buf, values[i], spec.IsJSONField(column)); err != nil {
			return fmt.Errorf("column %s: %w", column, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeValue(buf *bytes.Buffer, value any, jsonField bool) error {
	if value == nil {
		buf.WriteString("null")
		return nil
	}
	if jsonField {
		var raw []byte
		switch v := value.(type) {
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		}
		// json columns are embedded as-is, anything else falls through to a plain value
		if raw != nil && json.Valid(raw) {
			return json.Compact(buf, raw)
		}
	}
	if v, ok := value.([]byte); ok {
		value = string(v)
	}
	enc, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}
