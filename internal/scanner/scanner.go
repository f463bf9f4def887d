package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumipallolabs/dirsizer/internal/model"
)

// ErrRootUnreadable is matched by every error Scan returns for a bad root
var ErrRootUnreadable = errors.New("root directory unreadable")

// RootError describes why the scan root could not be used
type RootError struct {
	Path string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("scan root %q unreadable: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrRootUnreadable and the cause to errors.Is
func (e *RootError) Unwrap() []error {
	return []error{ErrRootUnreadable, e.Err}
}

// Options configures traversal
type Options struct {
	// Workers is the number of directories measured concurrently
	Workers int
	// WalkWorkers is the fastwalk worker count per measurement (0 = derived from Workers)
	WalkWorkers int
	// FollowSymlinks follows symbolic links. Off by default: a link is a zero-size leaf.
	FollowSymlinks bool
	// OneFileSystem skips directories on a different device (mount points)
	OneFileSystem bool
	// DiskUsage counts allocated blocks instead of apparent file size (Unix only)
	DiskUsage bool
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{Workers: 4}
}

// Scanner defines the interface for directory-size scanning
type Scanner interface {
	// Scan measures every directory below root. onProgress is called once per
	// measured directory with a strictly increasing Completed count; calls
	// never overlap.
	Scan(ctx context.Context, root string, onProgress func(model.Progress)) (*model.ScanResult, error)
}
