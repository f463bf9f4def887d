package model

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// SortKey selects the ordering of a result set
type SortKey int

const (
	ByPath SortKey = iota // lexicographic ascending
	BySize                // descending, ties by path
)

// String returns the flag spelling of the key
func (k SortKey) String() string {
	switch k {
	case ByPath:
		return "path"
	case BySize:
		return "size"
	default:
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
}

// ParseSortKey converts a flag value to a SortKey
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "path", "name":
		return ByPath, nil
	case "size":
		return BySize, nil
	default:
		return ByPath, fmt.Errorf("unknown sort key %q: must be one of [path size]", s)
	}
}

// Sort returns a sorted copy of entries. The input is not modified and
// equal keys keep their original order.
func Sort(entries []DirectoryEntry, key SortKey) []DirectoryEntry {
	out := slices.Clone(entries)
	switch key {
	case ByPath:
		slices.SortStableFunc(out, func(a, b DirectoryEntry) int {
			return strings.Compare(a.Path, b.Path)
		})
	case BySize:
		slices.SortStableFunc(out, func(a, b DirectoryEntry) int {
			if a.SizeBytes != b.SizeBytes {
				if a.SizeBytes > b.SizeBytes {
					return -1
				}
				return 1
			}
			return strings.Compare(a.Path, b.Path)
		})
	}
	return out
}

// IsDirectChild reports whether path sits immediately below root
func IsDirectChild(root, path string) bool {
	return filepath.Dir(path) == filepath.Clean(root)
}
