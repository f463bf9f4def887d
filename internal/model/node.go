package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrEntryUnreadable marks a file or directory that could not be read during a scan.
// It is never fatal: the entry contributes zero bytes.
var ErrEntryUnreadable = errors.New("entry unreadable")

// DirectoryEntry is one measured directory below the scan root
type DirectoryEntry struct {
	Path      string `json:"path"`       // absolute, OS-native separators
	SizeBytes uint64 `json:"size_bytes"` // sum of regular file sizes in the subtree
}

// Warning records a per-entry failure that was skipped
type Warning struct {
	Path string
	Err  error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Unwrap lets errors.Is match both ErrEntryUnreadable and the underlying cause
func (w Warning) Unwrap() []error {
	return []error{ErrEntryUnreadable, w.Err}
}

// ScanResult is the output of one scan pass. Entries are in traversal order.
type ScanResult struct {
	Root     string           `json:"root"`
	Entries  []DirectoryEntry `json:"entries"`
	Warnings []Warning        `json:"-"`
	Elapsed  time.Duration    `json:"elapsed"`

	// RootFiles is the size of the regular files directly in Root
	RootFiles uint64 `json:"root_files"`
}

// TotalSize returns the size of the root: its own files plus its direct children
func (r *ScanResult) TotalSize() uint64 {
	if r == nil {
		return 0
	}
	total := r.RootFiles
	for _, e := range r.Entries {
		if IsDirectChild(r.Root, e.Path) {
			total += e.SizeBytes
		}
	}
	return total
}

// Clone returns a deep copy so callers cannot mutate the owner's entries
func (r *ScanResult) Clone() *ScanResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Entries = append([]DirectoryEntry(nil), r.Entries...)
	out.Warnings = append([]Warning(nil), r.Warnings...)
	return &out
}

// Progress is a snapshot of the measure pass. Total is fixed once counted.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Fraction returns completion in [0,1], or 0 while Total is unknown or zero
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}
