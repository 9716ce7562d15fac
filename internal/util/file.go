//go:build !windows
// +build !windows

package util

import (
	"fmt"
	"os"
	"syscall"
)

// CheckDirWritable returns an error unless path is a directory the current user owns and can write to.
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
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return fmt.Errorf("sysstat: %w", err)
	}
	if euid := os.Geteuid(); euid != 0 && uint32(euid) != stat.Uid {
		return fmt.Errorf("user doesn't have permission to write to %s", path)
	}
	return nil
}
