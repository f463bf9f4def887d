package core

import (
	"context"
	"errors"

	"github.com/lumipallolabs/dirsizer/internal/model"
	"github.com/lumipallolabs/dirsizer/internal/scanner"
)

var (
	// ErrNoRootSelected is returned by Start when no root was given
	ErrNoRootSelected = errors.New("no root directory selected")
	// ErrScanAlreadyInProgress is returned by Start while a scan is running
	ErrScanAlreadyInProgress = errors.New("scan already in progress")
)

// ErrorKind classifies errors surfaced by the controller
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNoRootSelected
	KindRootUnreadable
	KindEntryUnreadable
	KindScanAlreadyInProgress
	KindCancelled
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNoRootSelected:
		return "no root selected"
	case KindRootUnreadable:
		return "root unreadable"
	case KindEntryUnreadable:
		return "entry unreadable"
	case KindScanAlreadyInProgress:
		return "scan already in progress"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err, KindNone for nil
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoRootSelected):
		return KindNoRootSelected
	case errors.Is(err, ErrScanAlreadyInProgress):
		return KindScanAlreadyInProgress
	case errors.Is(err, scanner.ErrRootUnreadable):
		return KindRootUnreadable
	case errors.Is(err, model.ErrEntryUnreadable):
		return KindEntryUnreadable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindUnknown
	}
}
