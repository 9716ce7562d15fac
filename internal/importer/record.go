package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Jeanphaie/lk-invest/internal"
	"github.com/Jeanphaie/lk-invest/internal/datatypes"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned for a line that is not a single well formed JSON value.
var ErrInvalidJSON = errors.New("invalid JSON")

// Field is one column of a record.
type Field struct {
	Column string
	Value  any
	JSON   bool
}

// Record is one export line, columns in the order the keys appear in the line.
type Record []Field

// Columns returns the column names.
func (r Record) Columns() []string {
	res := make([]string, len(r))
	for i, f := range r {
		res[i] = f.Column
	}
	return res
}

// Values returns the bind arguments.
func (r Record) Values() []any {
	res := make([]any, len(r))
	for i, f := range r {
		res[i] = f.Value
	}
	return res
}

// JSONFlags reports per column whether the value is bound as JSON.
func (r Record) JSONFlags() []bool {
	res := make([]bool, len(r))
	for i, f := range r {
		res[i] = f.JSON
	}
	return res
}

// ParseRecord parses one line into a record. Columns on the table's JSON allow-list are bound as
// datatypes.JSON, other values as their scalar Go equivalent.
func ParseRecord(line []byte, spec internal.TableSpec) (Record, error) {
	if !gjson.ValidBytes(line) {
		return nil, ErrInvalidJSON
	}
	if !utf8.Valid(line) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrInvalidJSON)
	}
	obj := gjson.ParseBytes(line)
	if !obj.IsObject() {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrInvalidJSON, obj.Type)
	}
	var rec Record
	var err error
	index := make(map[string]int)
	obj.ForEach(func(key, value gjson.Result) bool {
		column := key.String()
		if !pairedSurrogates(key.Raw) {
			err = fmt.Errorf("%w: unpaired surrogate in key %s", ErrInvalidJSON, key.Raw)
			return false
		}
		jsonField := spec.IsJSONField(column)
		if !jsonField && value.Type == gjson.String && !pairedSurrogates(value.Raw) {
			err = fmt.Errorf("%w: unpaired surrogate in %s", ErrInvalidJSON, column)
			return false
		}
		field := Field{Column: column, Value: toValue(value, jsonField), JSON: jsonField}
		if i, ok := index[column]; ok {
			// a repeated key keeps its first position and its last value
			rec[i] = field
		} else {
			index[column] = len(rec)
			rec = append(rec, field)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// pairedSurrogates reports whether every \u escape in the raw string token that encodes a UTF-16
// surrogate is part of a high/low pair. gjson replaces a lone surrogate with U+FFFD.
func pairedSurrogates(raw string) bool {
	if !strings.Contains(raw, `\u`) {
		return true
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			continue
		}
		if i+1 >= len(raw) {
			return false
		}
		if raw[i+1] != 'u' {
			i++
			continue
		}
		r, ok := escapedRune(raw, i)
		if !ok {
			return false
		}
		switch {
		case r >= 0xD800 && r <= 0xDBFF:
			low, ok := escapedRune(raw, i+6)
			if !ok || low < 0xDC00 || low > 0xDFFF {
				return false
			}
			i += 11
		case r >= 0xDC00 && r <= 0xDFFF:
			return false
		default:
			i += 5
		}
	}
	return true
}

// escapedRune decodes the \uXXXX escape starting at i.
func escapedRune(raw string, i int) (rune, bool) {
	if i+6 > len(raw) || raw[i] != '\\' || raw[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(raw[i+2:i+6], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func toValue(value gjson.Result, jsonField bool) any {
	if jsonField {
		return datatypes.NewJSON([]byte(value.Raw))
	}
	switch value.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.String:
		return value.Str
	case gjson.Number:
		return toNumber(value.Raw)
	default:
		// objects and arrays outside the allow-list bind as their JSON text
		return value.Raw
	}
}

func toNumber(raw string) any {
	if !strings.ContainsAny(raw, ".eE") {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
		// out of int64 range, keep every digit
		return raw
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return v
}
