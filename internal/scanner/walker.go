package scanner

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/lumipallolabs/dirsizer/internal/logging"
	"github.com/lumipallolabs/dirsizer/internal/model"
	"golang.org/x/sync/errgroup"
)

var errNotDirectory = errors.New("not a directory")

// Walker implements two-pass directory scanning: count every directory,
// then measure each one with an Aggregator.
type Walker struct {
	opts Options
}

// NewWalker creates a walker. Workers below 1 fall back to the default.
func NewWalker(opts Options) *Walker {
	if opts.Workers < 1 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.WalkWorkers < 1 {
		// Keep the total number of walking goroutines near fastwalk's default
		opts.WalkWorkers = max(2, fastwalk.DefaultNumWorkers()/opts.Workers)
	}
	return &Walker{opts: opts}
}

// warningCollector gathers warnings from concurrent aggregators, one per path
type warningCollector struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	warnings []model.Warning
}

func newWarningCollector() *warningCollector {
	return &warningCollector{seen: make(map[string]struct{})}
}

func (c *warningCollector) add(w model.Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[w.Path]; dup {
		return
	}
	c.seen[w.Path] = struct{}{}
	c.warnings = append(c.warnings, w)
}

func (c *warningCollector) list() []model.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Warning(nil), c.warnings...)
}

// Scan scans the directory tree below root
func (w *Walker) Scan(ctx context.Context, root string, onProgress func(model.Progress)) (*model.ScanResult, error) {
	start := time.Now()

	absRoot, err := openRoot(root)
	if err != nil {
		return nil, err
	}

	warnings := newWarningCollector()

	// Count pass
	dirs, err := w.listDirs(ctx, absRoot, warnings.add)
	if err != nil {
		return nil, err
	}
	total := len(dirs)
	logging.Scanner.Printf("counted %d directories under %s in %v", total, absRoot, time.Since(start))

	// Measure pass
	entries := make([]model.DirectoryEntry, total)
	agg := NewAggregator(w.opts, warnings.add)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Workers)

	var tickMu sync.Mutex
	completed := 0

	for i, dir := range dirs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			size, err := agg.Size(gctx, dir)
			if err != nil {
				return err
			}
			entries[i] = model.DirectoryEntry{Path: dir, SizeBytes: size}

			tickMu.Lock()
			defer tickMu.Unlock()
			completed++
			if onProgress != nil {
				onProgress(model.Progress{Completed: completed, Total: total})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rootFiles := w.rootFiles(absRoot, warnings.add)

	result := &model.ScanResult{
		Root:      absRoot,
		Entries:   entries,
		Warnings:  warnings.list(),
		Elapsed:   time.Since(start),
		RootFiles: rootFiles,
	}
	logging.Scanner.Printf("measured %d directories under %s in %v (%d warnings)",
		total, absRoot, result.Elapsed, len(result.Warnings))
	return result, nil
}

// rootFiles sums the regular files directly in root. Subdirectories are
// measured as entries.
func (w *Walker) rootFiles(root string, warn func(model.Warning)) uint64 {
	entries, err := os.ReadDir(root)
	if err != nil {
		warn(model.Warning{Path: root, Err: err})
		return 0
	}

	var total uint64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(root, e.Name())

		var info fs.FileInfo
		if e.Type()&fs.ModeSymlink != 0 && w.opts.FollowSymlinks {
			info, err = os.Stat(p)
		} else {
			info, err = e.Info()
		}
		if err != nil {
			warn(model.Warning{Path: p, Err: err})
			continue
		}
		if info.Mode().IsRegular() {
			total += fileSize(info, w.opts.DiskUsage)
		}
	}
	return total
}

// openRoot resolves root to an absolute path and checks it can be listed
func openRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &RootError{Path: root, Err: err}
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return "", &RootError{Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return "", &RootError{Path: absRoot, Err: errNotDirectory}
	}

	f, err := os.Open(absRoot)
	if err != nil {
		return "", &RootError{Path: absRoot, Err: err}
	}
	defer f.Close()

	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return "", &RootError{Path: absRoot, Err: err}
	}
	return absRoot, nil
}

// listDirs returns every directory below root, excluding root itself.
// Each directory's subdirectories are listed together in lexical order, then
// visited depth-first, using an explicit stack.
func (w *Walker) listDirs(ctx context.Context, root string, warn func(model.Warning)) ([]string, error) {
	var rootDev uint64
	checkDev := false
	if w.opts.OneFileSystem {
		rootDev, checkDev = deviceID(root)
	}

	var dirs []string
	stack := []string{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			// Still listed by its parent; the measure pass will report it as size 0
			logging.Scanner.Printf("cannot list %s: %v", dir, err)
			warn(model.Warning{Path: dir, Err: err})
		}

		var children []string
		for _, e := range entries {
			p := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				if checkDev {
					if dev, ok := deviceID(p); ok && dev != rootDev {
						logging.Scanner.Printf("skipping mount point %s", p)
						continue
					}
				}
				children = append(children, p)
			case e.Type()&fs.ModeSymlink != 0 && w.opts.FollowSymlinks:
				if w.followable(p, warn) {
					children = append(children, p)
				}
			}
		}

		dirs = append(dirs, children...)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return dirs, nil
}

// followable reports whether the link at path resolves to a directory that is
// not one of its own ancestors (which would loop forever).
func (w *Walker) followable(path string, warn func(model.Warning)) bool {
	target, err := os.Stat(path)
	if err != nil {
		logging.Scanner.Printf("broken link %s: %v", path, err)
		warn(model.Warning{Path: path, Err: err})
		return false
	}
	if !target.IsDir() {
		return false
	}
	for p := filepath.Dir(path); ; p = filepath.Dir(p) {
		parent, err := os.Stat(p)
		if err != nil {
			return false
		}
		if os.SameFile(target, parent) {
			logging.Scanner.Printf("not following %s: points to ancestor %s", path, p)
			return false
		}
		if filepath.Dir(p) == p {
			return true
		}
	}
}
