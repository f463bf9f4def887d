package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeffwilliams/squarify"
	"github.com/lumipallolabs/dirsizer/internal/model"
)

func TestSquarifyDirect(t *testing.T) {
	root := &treemapItem{
		size: 300,
		children: []*treemapItem{
			{size: 100},
			{size: 100},
			{size: 100},
		},
	}

	rect := squarify.Rect{X: 0, Y: 0, W: 76, H: 22}

	blocks, metas := squarify.Squarify(root, rect, squarify.Options{
		MaxDepth: 1,
		Sort:     true,
	})

	// Squarify returns children at depth 0
	depth0Count := 0
	for i := range blocks {
		if i < len(metas) && metas[i].Depth == 0 {
			depth0Count++
		}
	}

	if depth0Count != 3 {
		t.Errorf("Expected 3 depth-0 blocks, got %d", depth0Count)
	}
}

// resultWith builds a result with the given direct children of /r
func resultWith(sizes map[string]uint64) *model.ScanResult {
	res := &model.ScanResult{Root: "/r"}
	for name, size := range sizes {
		res.Entries = append(res.Entries, model.DirectoryEntry{Path: filepath.Join("/r", name), SizeBytes: size})
	}
	return res
}

func checkBounds(t *testing.T, panel TreemapPanel) {
	t.Helper()
	contentW := panel.width - treemapBorderH
	contentH := panel.height - treemapBorderV
	for i, block := range panel.blocks {
		if block.X < 0 || block.Y < 0 {
			t.Errorf("Block[%d] %s: negative position (%d,%d)", i, block.Path, block.X, block.Y)
		}
		if block.X+block.Width > contentW {
			t.Errorf("Block[%d] %s: exceeds width bounds: x=%d w=%d contentW=%d",
				i, block.Path, block.X, block.Width, contentW)
		}
		if block.Y+block.Height > contentH {
			t.Errorf("Block[%d] %s: exceeds height bounds: y=%d h=%d contentH=%d",
				i, block.Path, block.Y, block.Height, contentH)
		}
	}
}

func TestTreemapLayout(t *testing.T) {
	const mb = 1024 * 1024
	res := resultWith(map[string]uint64{
		"big1": 100 * mb, "big2": 80 * mb, "medium1": 50 * mb, "medium2": 30 * mb,
		"small1": 10 * mb, "small2": 5 * mb, "tiny1": 1 * mb, "tiny2": 500 * 1024,
	})

	panel := NewTreemapPanel()
	panel.SetSize(80, 24)
	panel.SetResult(res)

	if len(panel.blocks) == 0 {
		t.Fatal("expected blocks")
	}
	checkBounds(t, panel)

	if got := panel.Selected(); got != "/r/big1" {
		t.Errorf("expected largest block selected, got %q", got)
	}
}

func TestTreemapGroupsOverflow(t *testing.T) {
	sizes := make(map[string]uint64)
	for i := range 40 {
		sizes[fmt.Sprintf("d%02d", i)] = uint64(1000 - i)
	}

	panel := NewTreemapPanel()
	panel.SetSize(60, 20)
	panel.SetResult(resultWith(sizes))
	checkBounds(t, panel)

	var grouped *Block
	shown := 0
	for i := range panel.blocks {
		if panel.blocks[i].IsGrouped {
			grouped = &panel.blocks[i]
		} else {
			shown++
		}
	}
	if grouped == nil {
		t.Fatal("expected a grouped block")
	}
	if shown+grouped.GroupCount != 40 {
		t.Errorf("shown %d + grouped %d != 40", shown, grouped.GroupCount)
	}
	if shown > maxVisibleItems {
		t.Errorf("shown %d exceeds %d", shown, maxVisibleItems)
	}
}

func TestTreemapBlocksTile(t *testing.T) {
	panel := NewTreemapPanel()
	panel.SetSize(40, 15)
	panel.SetResult(resultWith(map[string]uint64{"a": 100, "b": 100, "c": 100}))

	if len(panel.blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(panel.blocks))
	}

	contentW := panel.width - treemapBorderH
	contentH := panel.height - treemapBorderV

	totalArea := 0
	for _, block := range panel.blocks {
		totalArea += block.Width * block.Height
	}

	// Should cover at least 90% of the area
	coverage := float64(totalArea) / float64(contentW*contentH)
	if coverage < 0.90 {
		t.Errorf("Blocks only cover %.1f%% of area, expected at least 90%%", coverage*100)
	}
}

func TestTreemapZoom(t *testing.T) {
	res := &model.ScanResult{
		Root: "/r",
		Entries: []model.DirectoryEntry{
			{Path: "/r/a", SizeBytes: 300},
			{Path: "/r/b", SizeBytes: 100},
			{Path: "/r/a/x", SizeBytes: 200},
			{Path: "/r/a/y", SizeBytes: 100},
		},
	}

	panel := NewTreemapPanel()
	panel.SetSize(60, 20)
	panel.SetResult(res)

	if panel.Focus() != "/r" || panel.Selected() != "/r/a" {
		t.Fatalf("focus=%q selected=%q", panel.Focus(), panel.Selected())
	}

	panel.ZoomIn()
	if panel.Focus() != "/r/a" {
		t.Errorf("expected focus /r/a, got %q", panel.Focus())
	}
	if panel.Selected() != "/r/a/x" {
		t.Errorf("expected /r/a/x selected, got %q", panel.Selected())
	}

	// Leaf directories cannot be zoomed into
	panel.ZoomIn()
	if panel.Focus() != "/r/a" {
		t.Errorf("zoom into leaf changed focus to %q", panel.Focus())
	}

	panel.ZoomOut()
	if panel.Focus() != "/r" || panel.Selected() != "/r/a" {
		t.Errorf("after zoom out focus=%q selected=%q", panel.Focus(), panel.Selected())
	}

	// Root is the outermost focus
	panel.ZoomOut()
	if panel.Focus() != "/r" {
		t.Errorf("zoomed out past root to %q", panel.Focus())
	}

	// Selecting a nested entry moves focus to its parent
	panel.SetSelected("/r/a/y")
	if panel.Focus() != "/r/a" {
		t.Errorf("expected focus to follow selection, got %q", panel.Focus())
	}
}

func TestTreemapEmptyResult(t *testing.T) {
	panel := NewTreemapPanel()
	panel.SetSize(40, 12)
	panel.SetResult(&model.ScanResult{Root: "/empty"})

	if len(panel.blocks) != 1 || panel.blocks[0].Path != "/empty" {
		t.Fatalf("expected a single block for the root, got %+v", panel.blocks)
	}
	if panel.View() == "" {
		t.Error("expected a rendered view")
	}

	panel.SetResult(nil)
	if len(panel.blocks) != 0 || panel.Focus() != "" {
		t.Error("expected cleared panel")
	}
}

func TestTreemapViewRendersBlocks(t *testing.T) {
	panel := NewTreemapPanel()
	panel.SetSize(60, 20)
	panel.SetResult(&model.ScanResult{
		Root: "/r",
		Entries: []model.DirectoryEntry{
			{Path: "/r/alpha", SizeBytes: 300},
			{Path: "/r/beta", SizeBytes: 100},
		},
	})

	view := panel.View()
	for _, want := range []string{"/r", "alpha", "beta"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines > 20 {
		t.Errorf("view is %d lines, taller than the panel", lines)
	}
}
