//go:build windows
// +build windows

package util

import (
	"fmt"
	"os"
)

// CheckDirWritable returns an error unless path is a directory with the owner write bit set.
func CheckDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if info.Mode().Perm()&0200 == 0 {
		return fmt.Errorf("write permission bit is not set for this user for %s", path)
	}
	return nil
}
