package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/dirsizer/internal/model"
	"github.com/lumipallolabs/dirsizer/internal/scanner"
)

// makeTree creates a/f1 (100 B), a/f2 (50 B) and an empty b
func makeTree(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "a"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a", "f1"), make([]byte, 100), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a", "f2"), make([]byte, 50), 0644))
	return tmp
}

func plainOptions(path, output string) Options {
	return Options{
		Path:   path,
		Sort:   model.BySize,
		Output: output,
		Scan:   scanner.DefaultOptions(),
	}
}

func TestRunTable(t *testing.T) {
	root := makeTree(t)
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")
	var out bytes.Buffer

	err := runWithPrefs(context.Background(), plainOptions(root, OutputTable), prefsPath, &out)
	require.NoError(t, err)
	assert.Equal(t, ExitOK, ExitCode(err))

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[1], "150 B")
	assert.Contains(t, lines[1], "100.0%")
	assert.True(t, strings.HasSuffix(lines[1], filepath.Join(root, "a")))
	assert.Contains(t, lines[2], "0 B")
	assert.True(t, strings.HasSuffix(lines[2], filepath.Join(root, "b")))
	assert.Contains(t, out.String(), "Total: 150 B in 2 directories under "+root)
}

func TestRunJSON(t *testing.T) {
	root := makeTree(t)
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")
	var out bytes.Buffer

	err := runWithPrefs(context.Background(), plainOptions(root, OutputJSON), prefsPath, &out)
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, root, report.Root)
	assert.Equal(t, "size", report.Sort)
	assert.Equal(t, uint64(150), report.TotalBytes)
	assert.Equal(t, []model.DirectoryEntry{
		{Path: filepath.Join(root, "a"), SizeBytes: 150},
		{Path: filepath.Join(root, "b"), SizeBytes: 0},
	}, report.Entries)
	assert.Empty(t, report.Warnings)
}

func TestRunMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")
	var out bytes.Buffer

	err := runWithPrefs(context.Background(), plainOptions(missing, OutputTable), prefsPath, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, scanner.ErrRootUnreadable)
	assert.Equal(t, ExitRootUnreadable, ExitCode(err))
	assert.Empty(t, out.String())
}

func TestRunReusesLastRoot(t *testing.T) {
	root := makeTree(t)
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")

	var out bytes.Buffer
	err := runWithPrefs(context.Background(), plainOptions("", OutputTable), prefsPath, &out)
	assert.Equal(t, ExitNoRootSelected, ExitCode(err))

	require.NoError(t, runWithPrefs(context.Background(), plainOptions(root, OutputTable), prefsPath, &out))

	out.Reset()
	require.NoError(t, runWithPrefs(context.Background(), plainOptions("", OutputJSON), prefsPath, &out))

	var report jsonReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, root, report.Root)
}
