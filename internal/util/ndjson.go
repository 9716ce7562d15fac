package util

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// LineReader reads a new line delimited JSON stream one non-blank line at a time.
type LineReader struct {
	name   string
	in     io.ReadCloser
	gr     *gzip.Reader
	r      *bufio.Reader
	digest *xxhash.Digest
	line   int
	count  int
}

// NewLineReader wraps the stream. Streams whose name ends with .gz are gunzipped.
// The reader takes ownership of in and closes it on Close.
func NewLineReader(name string, in io.ReadCloser) (*LineReader, error) {
	var r io.Reader = in
	var gr *gzip.Reader
	if strings.HasSuffix(name, ".gz") {
		var err error
		gr, err = gzip.NewReader(in)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("gzip: error opening: %s. %w", name, err)
		}
		r = gr
	}
	return &LineReader{
		name:   name,
		in:     in,
		gr:     gr,
		r:      bufio.NewReaderSize(r, 64*1024),
		digest: xxhash.New(),
	}, nil
}

// Next returns the next non-blank line with surrounding whitespace trimmed.
// It returns false once the stream is exhausted.
func (l *LineReader) Next() ([]byte, bool, error) {
	for {
		buf, err := l.r.ReadBytes('\n')
		if len(buf) > 0 {
			l.digest.Write(buf)
			l.line++
		}
		if err != nil && err != io.EOF {
			return nil, false, fmt.Errorf("error reading %s: %w", l.name, err)
		}
		trimmed := bytes.TrimSpace(buf)
		if len(trimmed) > 0 {
			l.count++
			return trimmed, true, nil
		}
		if err == io.EOF {
			return nil, false, nil
		}
	}
}

// Line returns the 1-based line number of the last line returned by Next.
func (l *LineReader) Line() int {
	return l.line
}

// Count returns the number of non-blank lines read.
func (l *LineReader) Count() int {
	return l.count
}

// Name returns the stream name.
func (l *LineReader) Name() string {
	return l.name
}

// Fingerprint returns the xxhash64 of the uncompressed bytes read so far.
func (l *LineReader) Fingerprint() string {
	return fmt.Sprintf("%016x", l.digest.Sum64())
}

// Close the stream.
func (l *LineReader) Close() error {
	if l.gr != nil {
		l.gr.Close()
		l.gr = nil
	}
	if l.in != nil {
		err := l.in.Close()
		l.in = nil
		return err
	}
	return nil
}
