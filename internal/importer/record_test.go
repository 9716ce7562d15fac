package importer

import (
	"errors"
	"testing"

	"github.com/Jeanphaie/lk-invest/internal"
	"github.com/Jeanphaie/lk-invest/internal/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectSpec = internal.TableSpec{
	Name:       "Project",
	PrimaryKey: "project_id",
	JSONFields: []string{"inputs_general", "photos"},
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"project_id": 1, "name": "Maison", "inputs_general": {"a": 1}, "photos": [], "archived": false, "notes": null, "price": 12.5}`), projectSpec)
	require.NoError(t, err)
	assert.Equal(t, []string{"project_id", "name", "inputs_general", "photos", "archived", "notes", "price"}, rec.Columns())
	assert.Equal(t, []bool{false, false, true, true, false, false, false}, rec.JSONFlags())
	assert.Equal(t, []any{int64(1), "Maison", datatypes.JSON(`{"a": 1}`), datatypes.JSON(`[]`), false, nil, 12.5}, rec.Values())
}

func TestParseRecordJSONFieldScalars(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"project_id":2,"inputs_general":null,"photos":"x"}`), projectSpec)
	require.NoError(t, err)
	assert.Equal(t, datatypes.JSON(`null`), rec[1].Value)
	assert.Equal(t, datatypes.JSON(`"x"`), rec[2].Value)
	v, err := rec[1].Value.(datatypes.JSON).Value()
	require.NoError(t, err)
	assert.Equal(t, "null", v)
}

func TestParseRecordNestedOutsideAllowList(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"id":1,"extra":{"b":[1,2]}}`), projectSpec)
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1,2]}`, rec[1].Value)
	assert.False(t, rec[1].JSON)
}

func TestParseRecordDuplicateKeys(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"id":1,"name":"a","id":2}`), projectSpec)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rec.Columns())
	assert.Equal(t, []any{int64(2), "a"}, rec.Values())
}

func TestParseRecordNumbers(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"a":-3,"b":1e3,"c":99999999999999999999,"d":0.25}`), projectSpec)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(-3), float64(1000), "99999999999999999999", 0.25}, rec.Values())
}

func TestParseRecordEmptyObject(t *testing.T) {
	rec, err := ParseRecord([]byte(`{}`), projectSpec)
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestParseRecordInvalid(t *testing.T) {
	for _, line := range []string{`{"id":`, `not json`, `{"id":1}{"id":2}`} {
		_, err := ParseRecord([]byte(line), projectSpec)
		assert.True(t, errors.Is(err, ErrInvalidJSON), line)
	}
	_, err := ParseRecord([]byte(`[1,2]`), projectSpec)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
	assert.Contains(t, err.Error(), "expected an object")

	_, err = ParseRecord([]byte("{\"name\":\"caf\xe9\"}"), projectSpec)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
	assert.Contains(t, err.Error(), "invalid UTF-8")

	for _, line := range []string{`{"name":"\ud800x"}`, `{"name":"x\udc00"}`, `{"name":"\ud800\u0041"}`, `{"\ud800":1}`} {
		_, err := ParseRecord([]byte(line), projectSpec)
		assert.True(t, errors.Is(err, ErrInvalidJSON), line)
		assert.Contains(t, err.Error(), "unpaired surrogate", line)
	}
}

func TestParseRecordEscapes(t *testing.T) {
	rec, err := ParseRecord([]byte(`{"name":"\ud83d\ude00 caf\u00e9 \\u0041","notes":"café"}`), projectSpec)
	require.NoError(t, err)
	assert.Equal(t, []any{"\U0001F600 café \\u0041", "café"}, rec.Values())
}
