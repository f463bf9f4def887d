package scanner

import (
	"context"
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/lumipallolabs/dirsizer/internal/logging"
	"github.com/lumipallolabs/dirsizer/internal/model"
)

// Aggregator computes the byte size of a single directory subtree
type Aggregator struct {
	opts Options
	warn func(model.Warning)
}

// NewAggregator creates an aggregator. warn receives every skipped entry and may be nil.
func NewAggregator(opts Options, warn func(model.Warning)) *Aggregator {
	return &Aggregator{opts: opts, warn: warn}
}

// Size sums the sizes of all regular files reachable under path.
//
// Directories add nothing of their own. Symlinks are zero-size leaves unless
// FollowSymlinks is set, in which case fastwalk follows them and skips links
// that point back into an ancestor. Entries that cannot be read are skipped
// and reported as warnings. The only error returned is ctx.Err().
func (a *Aggregator) Size(ctx context.Context, path string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var total atomic.Uint64

	var rootDev uint64
	checkDev := false
	if a.opts.OneFileSystem {
		rootDev, checkDev = deviceID(path)
	}

	conf := &fastwalk.Config{
		Follow:     a.opts.FollowSymlinks,
		NumWorkers: a.opts.WalkWorkers,
	}

	walkErr := fastwalk.Walk(conf, path, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			a.skip(p, err)
			return nil
		}

		if d.IsDir() {
			if checkDev && p != path {
				if dev, ok := deviceID(p); ok && dev != rootDev {
					return fastwalk.SkipDir
				}
			}
			return nil
		}

		var info fs.FileInfo
		if a.opts.FollowSymlinks {
			info, err = fastwalk.StatDirEntry(p, d)
		} else {
			info, err = d.Info()
		}
		if err != nil {
			a.skip(p, err)
			return nil
		}

		// Links (when not followed), devices, sockets and pipes count as zero
		if !info.Mode().IsRegular() {
			return nil
		}

		total.Add(fileSize(info, a.opts.DiskUsage))
		return nil
	})

	if walkErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		// The subtree root itself vanished or could not be stat'ed
		a.skip(path, walkErr)
	}

	return total.Load(), nil
}

func (a *Aggregator) skip(path string, err error) {
	logging.Scanner.Printf("skipping %s: %v", path, err)
	if a.warn != nil {
		a.warn(model.Warning{Path: path, Err: err})
	}
}
