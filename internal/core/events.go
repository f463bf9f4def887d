package core

import "github.com/lumipallolabs/dirsizer/internal/model"

// Event represents a state change from the controller
type Event interface {
	isEvent()
}

// ScanStartedEvent is emitted when a scan begins
type ScanStartedEvent struct {
	Root string
}

func (ScanStartedEvent) isEvent() {}

// ScanProgressEvent is emitted after each measured directory
type ScanProgressEvent struct {
	Progress model.Progress
}

func (ScanProgressEvent) isEvent() {}

// ScanCompletedEvent is emitted when a scan finishes. Result is the
// subscriber's own copy.
type ScanCompletedEvent struct {
	Result *model.ScanResult
}

func (ScanCompletedEvent) isEvent() {}

// ScanCancelledEvent is emitted when a scan stops because of Cancel or its
// context. No result is kept.
type ScanCancelledEvent struct{}

func (ScanCancelledEvent) isEvent() {}

// ErrorEvent is emitted when a scan fails
type ErrorEvent struct {
	Kind ErrorKind
	Err  error
}

func (ErrorEvent) isEvent() {}
