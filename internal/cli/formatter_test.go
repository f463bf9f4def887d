package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/dirsizer/internal/core"
	"github.com/lumipallolabs/dirsizer/internal/model"
	"github.com/lumipallolabs/dirsizer/internal/scanner"
)

func sampleResult() *model.ScanResult {
	return &model.ScanResult{
		Root: "/r",
		Entries: []model.DirectoryEntry{
			{Path: "/r/a", SizeBytes: 3072},
			{Path: "/r/a/x", SizeBytes: 1024},
			{Path: "/r/b", SizeBytes: 1024},
		},
		Warnings: []model.Warning{{Path: "/r/c", Err: os.ErrPermission}},
		Elapsed:  1500 * time.Millisecond,
	}
}

func TestPrintTable(t *testing.T) {
	res := sampleResult()
	var buf bytes.Buffer

	require.NoError(t, PrintTable(res, model.Sort(res.Entries, model.BySize), &buf))
	out := buf.String()

	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[0], "SIZE")
	assert.Contains(t, lines[1], "3.0 KiB")
	assert.Contains(t, lines[1], "75.0%")
	assert.True(t, strings.HasSuffix(lines[1], "/r/a"))
	assert.True(t, strings.HasSuffix(lines[2], "/r/a/x"), "ties are ordered by path")
	assert.Contains(t, out, "Total: 4.0 KiB in 3 directories under /r (1.5s)")
	assert.Contains(t, out, "1 entry could not be read")
}

func TestPrintTableEmpty(t *testing.T) {
	res := &model.ScanResult{Root: "/empty"}
	var buf bytes.Buffer

	require.NoError(t, PrintTable(res, nil, &buf))
	assert.Contains(t, buf.String(), "Total: 0 B in 0 directories")
	assert.NotContains(t, buf.String(), "could not be read")
}

func TestPrintJSON(t *testing.T) {
	res := sampleResult()
	var buf bytes.Buffer

	require.NoError(t, PrintJSON(res, model.Sort(res.Entries, model.ByPath), model.ByPath, &buf))

	var report jsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "/r", report.Root)
	assert.Equal(t, "path", report.Sort)
	assert.Equal(t, uint64(4096), report.TotalBytes)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "/r/a", report.Entries[0].Path)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "/r/c", report.Warnings[0].Path)
}

func TestPrintJSONEmptyEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&model.ScanResult{Root: "/e"}, nil, model.BySize, &buf))
	assert.Contains(t, buf.String(), `"entries": []`)
	assert.Contains(t, buf.String(), `"warnings": []`)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitNoRootSelected, ExitCode(core.ErrNoRootSelected))
	assert.Equal(t, ExitRootUnreadable, ExitCode(&scanner.RootError{Path: "/x", Err: os.ErrNotExist}))
	assert.Equal(t, ExitCancelled, ExitCode(context.Canceled))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}

func TestRootCommandValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad sort", []string{"--sort", "date", "--output", "table", "."}, "sort"},
		{"bad output", []string{"--output", "xml", "."}, "invalid output format"},
		{"bad workers", []string{"--workers", "0", "--output", "table", "."}, "workers"},
		{"too many args", []string{"a", "b"}, "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand("test")
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
