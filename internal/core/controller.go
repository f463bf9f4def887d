package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lumipallolabs/dirsizer/internal/logging"
	"github.com/lumipallolabs/dirsizer/internal/model"
	"github.com/lumipallolabs/dirsizer/internal/scanner"
)

// eventBuffer is the per-scan channel capacity. The last slot is kept free
// for the terminal event.
const eventBuffer = 100

// Controller manages scan lifecycle without UI dependencies
type Controller struct {
	mu sync.RWMutex

	// State
	state     State
	root      string
	progress  model.Progress
	result    *model.ScanResult
	err       error
	startTime time.Time

	// Running scan
	cancel context.CancelFunc
	done   chan struct{}

	scanner scanner.Scanner
}

// NewController creates a controller that measures with s
func NewController(s scanner.Scanner) *Controller {
	return &Controller{scanner: s}
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Root returns the most recently requested root
func (c *Controller) Root() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// Progress returns the progress of the running scan, zero otherwise
func (c *Controller) Progress() model.Progress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.progress
}

// Result returns a copy of the last completed result, or nil
func (c *Controller) Result() *model.ScanResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result.Clone()
}

// Sorted returns the entries of the last completed result ordered by key
func (c *Controller) Sorted(key model.SortKey) []model.DirectoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return nil
	}
	return model.Sort(c.result.Entries, key)
}

// Warnings returns the entries skipped by the last completed scan
func (c *Controller) Warnings() []model.Warning {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return nil
	}
	return append([]model.Warning(nil), c.result.Warnings...)
}

// Snapshot returns a read-only view of the current state
func (c *Controller) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		State:     c.state,
		Root:      c.root,
		Progress:  c.progress,
		StartTime: c.startTime,
		Err:       c.err,
	}
	if c.result != nil {
		s.Warnings = len(c.result.Warnings)
	}
	return s
}

// Start begins scanning root in the background. The returned channel carries
// this scan's events and is closed after exactly one ScanCompletedEvent,
// ScanCancelledEvent or ErrorEvent.
func (c *Controller) Start(ctx context.Context, root string) (<-chan Event, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrNoRootSelected
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateScanning {
		return nil, fmt.Errorf("start %s: %w", root, ErrScanAlreadyInProgress)
	}

	scanCtx, cancel := context.WithCancel(ctx)

	// Reset state for new scan
	c.state = StateScanning
	c.root = root
	c.progress = model.Progress{}
	c.result = nil
	c.err = nil
	c.startTime = time.Now()
	c.cancel = cancel
	c.done = make(chan struct{})

	eventCh := make(chan Event, eventBuffer)

	go c.runScan(scanCtx, root, eventCh, c.done)

	return eventCh, nil
}

// Cancel stops the running scan and waits for it to finish. The controller
// returns to Idle and nothing from the scan is kept. It does nothing when no
// scan is running.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.state != StateScanning {
		c.mu.Unlock()
		return
	}
	// Cancelled under the lock so runScan cannot decide Completed afterwards
	c.cancel()
	done := c.done
	c.mu.Unlock()

	logging.Debug.Printf("[Controller] Cancel requested")
	<-done
}

// runScan executes the scan in a goroutine
func (c *Controller) runScan(ctx context.Context, root string, eventCh chan Event, done chan struct{}) {
	defer close(done)
	defer close(eventCh)

	logging.Debug.Printf("[Controller] Starting scan of %s", root)

	eventCh <- ScanStartedEvent{Root: root}

	result, err := c.scanner.Scan(ctx, root, func(p model.Progress) {
		c.mu.Lock()
		c.progress = p
		c.mu.Unlock()

		sendProgress(ctx, eventCh, ScanProgressEvent{Progress: p})
	})

	c.mu.Lock()
	// Read before releasing the context; Cancel only cancels under the lock
	cancelled := ctx.Err() != nil
	c.progress = model.Progress{}
	c.cancel()
	c.cancel = nil

	switch {
	case cancelled:
		c.state = StateIdle
		c.mu.Unlock()

		logging.Debug.Printf("[Controller] Scan of %s cancelled", root)
		eventCh <- ScanCancelledEvent{}

	case err != nil:
		c.state = StateFailed
		c.err = err
		c.mu.Unlock()

		logging.Debug.Printf("[Controller] Scan of %s failed: %v", root, err)
		eventCh <- ErrorEvent{Kind: KindOf(err), Err: err}

	default:
		c.state = StateCompleted
		c.result = result
		c.mu.Unlock()

		logging.Debug.Printf("[Controller] Scan complete: %d directories, %d warnings",
			len(result.Entries), len(result.Warnings))
		eventCh <- ScanCompletedEvent{Result: result.Clone()}
	}
}

// sendProgress delivers a progress event unless the scan was cancelled. When
// the subscriber falls behind the event is dropped; Progress still reports it.
func sendProgress(ctx context.Context, eventCh chan Event, ev Event) {
	if ctx.Err() != nil || len(eventCh) >= cap(eventCh)-1 {
		return
	}
	eventCh <- ev
}
