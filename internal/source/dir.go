package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type dirSource struct {
	dir string
}

var _ Source = (*dirSource)(nil)

// NewDir returns a source reading from a local directory.
func NewDir(dir string) (Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("export directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &dirSource{dir: dir}, nil
}

func (d *dirSource) Open(ctx context.Context, table string) (string, io.ReadCloser, error) {
	for _, name := range Candidates(table) {
		fn := filepath.Join(d.dir, name)
		f, err := os.Open(fn)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", nil, fmt.Errorf("error opening: %s. %w", fn, err)
		}
		if info, err := f.Stat(); err == nil && info.IsDir() {
			f.Close()
			continue
		}
		return fn, f, nil
	}
	return "", nil, ErrNotFound
}

func (d *dirSource) String() string {
	return d.dir
}
