//go:build unix

package scanner

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// deviceID returns the device number of path without following links
func deviceID(path string) (uint64, bool) {
	var stat unix.Stat_t
	if err := unix.Lstat(path, &stat); err != nil {
		return 0, false
	}
	return uint64(stat.Dev), true
}

// fileSize returns the apparent size, or the allocated size when diskUsage is set
func fileSize(info fs.FileInfo, diskUsage bool) uint64 {
	if diskUsage {
		if stat, ok := info.Sys().(*syscall.Stat_t); ok {
			// Blocks is in 512-byte units
			return uint64(stat.Blocks) * 512
		}
	}
	return uint64(max(info.Size(), 0))
}
