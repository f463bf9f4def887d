//go:build !unix

package scanner

import "io/fs"

// deviceID is not available here; mount points are never skipped
func deviceID(path string) (uint64, bool) {
	return 0, false
}

// fileSize returns the apparent size; allocated size is not available here
func fileSize(info fs.FileInfo, diskUsage bool) uint64 {
	return uint64(max(info.Size(), 0))
}
