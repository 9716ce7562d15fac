package datatypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is raw JSON text bound as a native JSON column value. It implements driver.Valuer and sql.Scanner.
type JSON json.RawMessage

var _ driver.Valuer = JSON(nil)

// NewJSON copies raw into a JSON value. raw must already be valid JSON.
func NewJSON(raw []byte) JSON {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return JSON(buf)
}

// Value return json value, implement driver.Valuer interface.
// An empty value binds SQL NULL, the JSON literal null binds as JSON.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan scan value into JSON, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON("null")
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		if len(v) > 0 {
			bytes = make([]byte, len(v))
			copy(bytes, v)
		}
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSON value: %v", value)
	}
	*j = JSON(bytes)
	return nil
}

// MarshalJSON to output non base64 encoded []byte
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(j).MarshalJSON()
}

// UnmarshalJSON to deserialize []byte
func (j *JSON) UnmarshalJSON(b []byte) error {
	result := json.RawMessage{}
	err := result.UnmarshalJSON(b)
	*j = JSON(result)
	return err
}

func (j JSON) String() string {
	return string(j)
}
