package core

import (
	"time"

	"github.com/lumipallolabs/dirsizer/internal/model"
)

// State is the controller's lifecycle state
type State int

const (
	StateIdle State = iota
	StateScanning
	StateCompleted
	StateFailed
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScanning:
		return "Scanning"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return ""
	}
}

// Status is a read-only snapshot of the controller
type Status struct {
	State     State
	Root      string
	Progress  model.Progress
	StartTime time.Time
	Warnings  int
	Err       error // set only in StateFailed
}

// IsScanning returns true if a scan is in progress
func (s Status) IsScanning() bool {
	return s.State == StateScanning
}

// Elapsed returns time since the scan started
func (s Status) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime).Truncate(time.Second)
}
