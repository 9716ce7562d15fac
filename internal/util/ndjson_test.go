package util

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *LineReader) ([]string, []int) {
	var lines []string
	var numbers []int
	for {
		line, ok, err := r.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		lines = append(lines, string(line))
		numbers = append(numbers, r.Line())
	}
	return lines, numbers
}

func TestLineReaderSkipsBlankLines(t *testing.T) {
	in := "{\"a\":1}\n\n   \n{\"b\":2}\r\n{\"c\":3}"
	r, err := NewLineReader("Project.json", io.NopCloser(strings.NewReader(in)))
	require.NoError(t, err)
	defer r.Close()
	lines, numbers := readAll(t, r)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`, `{"c":3}`}, lines)
	assert.Equal(t, []int{1, 4, 5}, numbers)
	assert.Equal(t, 3, r.Count())
}

func TestLineReaderEmpty(t *testing.T) {
	r, err := NewLineReader("Project.json", io.NopCloser(strings.NewReader("")))
	require.NoError(t, err)
	defer r.Close()
	lines, _ := readAll(t, r)
	assert.Empty(t, lines)
	assert.Equal(t, "ef46db3751d8e999", r.Fingerprint())
}

func TestLineReaderFingerprint(t *testing.T) {
	r, err := NewLineReader("Project.json", io.NopCloser(strings.NewReader("hello")))
	require.NoError(t, err)
	defer r.Close()
	lines, _ := readAll(t, r)
	assert.Equal(t, []string{"hello"}, lines)
	assert.Equal(t, "26c7827d889f6da3", r.Fingerprint())
}

func TestLineReaderLongLine(t *testing.T) {
	long := `{"data":"` + strings.Repeat("x", 200*1024) + `"}`
	r, err := NewLineReader("DvfTransaction.json", io.NopCloser(strings.NewReader(long+"\n")))
	require.NoError(t, err)
	defer r.Close()
	lines, _ := readAll(t, r)
	require.Len(t, lines, 1)
	assert.Equal(t, long, lines[0])
}

func TestLineReaderGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("{\"id\":1}\n{\"id\":2}\n"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	r, err := NewLineReader("DvfSeries.json.gz", io.NopCloser(&buf))
	require.NoError(t, err)
	defer r.Close()
	lines, _ := readAll(t, r)
	assert.Equal(t, []string{`{"id":1}`, `{"id":2}`}, lines)
}

func TestLineReaderBadGzip(t *testing.T) {
	_, err := NewLineReader("DvfSeries.json.gz", io.NopCloser(strings.NewReader("not gzip")))
	assert.Error(t, err)
}
