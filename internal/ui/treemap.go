package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeffwilliams/squarify"
	"github.com/lumipallolabs/dirsizer/internal/model"
)

// Block represents a rectangle in the treemap
type Block struct {
	Path          string // empty for the grouped block
	Size          uint64
	X, Y          int
	Width, Height int
	// For grouped items
	IsGrouped  bool
	GroupCount int
}

// TreemapPanel displays the directories directly below a focus directory
type TreemapPanel struct {
	root     string
	focus    string
	selected string
	sizes    map[string]uint64
	children map[string][]string // parent -> direct subdirectories
	blocks   []Block
	width    int
	height   int
}

// NewTreemapPanel creates a new treemap panel
func NewTreemapPanel() TreemapPanel {
	return TreemapPanel{}
}

// SetResult replaces the displayed result and focuses on its root
func (t *TreemapPanel) SetResult(res *model.ScanResult) {
	t.root, t.focus, t.selected = "", "", ""
	t.sizes = nil
	t.children = nil

	if res != nil {
		t.root = res.Root
		t.focus = res.Root
		t.sizes = make(map[string]uint64, len(res.Entries)+1)
		t.children = make(map[string][]string)
		t.sizes[res.Root] = res.TotalSize()
		for _, e := range res.Entries {
			t.sizes[e.Path] = e.SizeBytes
			parent := filepath.Dir(e.Path)
			t.children[parent] = append(t.children[parent], e.Path)
		}
	}

	t.layout()
	t.SelectFirst()
}

// SetSize sets the panel dimensions
func (t *TreemapPanel) SetSize(w, h int) {
	if t.width != w || t.height != h {
		t.width = w
		t.height = h
		t.layout()
	}
}

// Focus returns the directory whose children are shown
func (t TreemapPanel) Focus() string {
	return t.focus
}

// Selected returns the selected directory
func (t TreemapPanel) Selected() string {
	return t.selected
}

// Blocks returns the current layout
func (t TreemapPanel) Blocks() []Block {
	return t.blocks
}

// SetSelected selects path, moving focus to its parent when it is not visible
func (t *TreemapPanel) SetSelected(path string) {
	if _, ok := t.sizes[path]; !ok || path == t.root {
		return
	}
	t.selected = path
	if parent := filepath.Dir(path); parent != t.focus {
		t.focus = parent
		t.layout()
	}
}

// SelectFirst selects the largest visible block
func (t *TreemapPanel) SelectFirst() {
	for _, b := range t.blocks {
		if !b.IsGrouped {
			t.selected = b.Path
			return
		}
	}
}

// ZoomIn focuses on the selected directory if it has subdirectories
func (t *TreemapPanel) ZoomIn() {
	if t.selected != "" && len(t.children[t.selected]) > 0 {
		t.focus = t.selected
		t.layout()
		t.SelectFirst()
	}
}

// ZoomOut goes to the parent of the focus directory
func (t *TreemapPanel) ZoomOut() {
	if t.focus != "" && t.focus != t.root {
		t.selected = t.focus
		t.focus = filepath.Dir(t.focus)
		t.layout()
	}
}

// treemapItem wraps a directory for the squarify algorithm
type treemapItem struct {
	path string
	size float64
	// Children for TreeSizer interface
	children []*treemapItem
}

// Size implements squarify.TreeSizer
func (t *treemapItem) Size() float64 {
	return t.size
}

// NumChildren implements squarify.TreeSizer
func (t *treemapItem) NumChildren() int {
	return len(t.children)
}

// Child implements squarify.TreeSizer
func (t *treemapItem) Child(i int) squarify.TreeSizer {
	return t.children[i]
}

const (
	minBlockWidth   = 8  // minimum width for any block (fits short label)
	minBlockHeight  = 3  // minimum height for any block (border + 1 line text)
	maxVisibleItems = 15 // max items before grouping remainder into "N more"

	treemapBorderH = 4 // panel border and padding
	treemapBorderV = 3 // panel border and title line
)

// layout calculates block positions using the squarify library
func (t *TreemapPanel) layout() {
	t.blocks = nil

	if t.focus == "" || t.width <= treemapBorderH || t.height <= treemapBorderV {
		return
	}

	paths := t.children[t.focus]
	if len(paths) == 0 {
		// Leaf directory - show as single block
		paths = []string{t.focus}
	}

	contentW := t.width - treemapBorderH
	contentH := t.height - treemapBorderV

	items := make([]*treemapItem, 0, len(paths))
	for _, p := range paths {
		size := float64(t.sizes[p])
		if size < 1 {
			size = 1 // Prevent division by zero, but keep proportions
		}
		items = append(items, &treemapItem{path: p, size: size})
	}

	// Sort by size descending, ties by path
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].size != items[j].size {
			return items[i].size > items[j].size
		}
		return items[i].path < items[j].path
	})

	rect := squarify.Rect{X: 0, Y: 0, W: float64(contentW), H: float64(contentH)}
	opts := squarify.Options{MaxDepth: 1, Sort: true}

	var (
		blocks  []squarify.Block
		metas   []squarify.Meta
		grouped int
	)

	// Find the largest number of items that fit with minimum dimensions
	for visible := min(len(items), maxVisibleItems); visible >= 1; visible-- {
		mainRect := rect
		shown := visible
		grouped = 0

		// Items that do not fit share one "N more" strip at the bottom
		if visible < len(items) && contentH > minBlockHeight {
			shown = max(visible-1, 1)
			grouped = len(items) - shown
			mainRect.H = float64(contentH - minBlockHeight)
		}

		root := &treemapItem{children: items[:shown]}
		for _, child := range root.children {
			root.size += child.size
		}
		blocks, metas = squarify.Squarify(root, mainRect, opts)

		if visible == 1 || allFit(blocks, metas) {
			break
		}
	}

	// Convert squarify blocks to our Block type
	maxMainBlockEndY := 0
	for i, block := range blocks {
		item, ok := block.TreeSizer.(*treemapItem)
		if !ok || i >= len(metas) || metas[i].Depth != 0 {
			continue
		}

		// Round all edges so adjacent blocks share boundaries
		x := int(math.Round(block.X))
		y := int(math.Round(block.Y))
		w := min(int(math.Round(block.X+block.W)), contentW) - x
		h := min(int(math.Round(block.Y+block.H)), contentH) - y

		if w < 1 || h < 1 || x >= contentW || y >= contentH {
			continue
		}
		maxMainBlockEndY = max(maxMainBlockEndY, y+h)

		t.blocks = append(t.blocks, Block{
			Path:   item.path,
			Size:   t.sizes[item.path],
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		})
	}

	if grouped > 0 {
		var groupSize uint64
		for _, item := range items[len(items)-grouped:] {
			groupSize += t.sizes[item.path]
		}
		// Fill the strip right below the main blocks
		t.blocks = append(t.blocks, Block{
			Size:       groupSize,
			X:          0,
			Y:          maxMainBlockEndY,
			Width:      contentW,
			Height:     max(contentH-maxMainBlockEndY, 1),
			IsGrouped:  true,
			GroupCount: grouped,
		})
	}
}

// allFit reports whether every depth-0 block meets the minimum dimensions
func allFit(blocks []squarify.Block, metas []squarify.Meta) bool {
	for i, block := range blocks {
		if i >= len(metas) || metas[i].Depth != 0 {
			continue
		}
		w := int(math.Floor(block.X+block.W)) - int(math.Floor(block.X))
		h := int(math.Floor(block.Y+block.H)) - int(math.Floor(block.Y))
		if w < minBlockWidth || h < minBlockHeight {
			return false
		}
	}
	return true
}

// View renders the treemap
func (t TreemapPanel) View() string {
	if t.focus == "" {
		return TreemapPanelStyle.Width(max(t.width-2, 0)).Render("No data")
	}

	contentH := max(t.height-treemapBorderV, 1)

	type renderedBlock struct {
		block Block
		lines []string
	}

	rendered := make([]renderedBlock, 0, len(t.blocks))
	for _, block := range t.blocks {
		lines := strings.Split(t.renderBlock(block), "\n")
		rendered = append(rendered, renderedBlock{block, lines})
	}

	// Composite blocks line by line
	outputLines := make([]string, 0, contentH)
	for y := 0; y < contentH; y++ {
		type segment struct {
			x, width int
			line     string
		}
		var segments []segment
		for _, rb := range rendered {
			idx := y - rb.block.Y
			if idx >= 0 && idx < len(rb.lines) && idx < rb.block.Height {
				segments = append(segments, segment{rb.block.X, rb.block.Width, rb.lines[idx]})
			}
		}
		sort.Slice(segments, func(i, j int) bool { return segments[i].x < segments[j].x })

		var b strings.Builder
		currentX := 0
		for _, seg := range segments {
			if seg.x > currentX {
				b.WriteString(strings.Repeat(" ", seg.x-currentX))
			}
			b.WriteString(seg.line)
			currentX = seg.x + seg.width
		}
		outputLines = append(outputLines, b.String())
	}

	title := lipgloss.NewStyle().Foreground(ColorMuted).Render(t.focus)
	content := title + "\n" + strings.Join(outputLines, "\n")
	return TreemapPanelStyle.
		Width(max(t.width-2, 0)).
		Height(contentH + 1).
		MaxHeight(t.height).
		Render(content)
}

// renderBlock renders a complete block using lipgloss
func (t TreemapPanel) renderBlock(block Block) string {
	fgColor, borderColor := ColorDir, ColorDir
	if block.IsGrouped {
		fgColor = lipgloss.Color("#6B7280")
		borderColor = lipgloss.Color("#4B5563")
	}

	isSelected := !block.IsGrouped && block.Path == t.selected
	if isSelected {
		fgColor = lipgloss.Color("#FFFFFF")
		borderColor = ColorPrimary
	}

	label := filepath.Base(block.Path)
	if block.IsGrouped {
		label = fmt.Sprintf("%d more", block.GroupCount)
	}

	innerW := max(block.Width-2, 0)
	innerH := max(block.Height-2, 0)

	text := label
	if innerH > 1 {
		text = label + "\n" + FormatSize(block.Size)
	}

	style := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		MaxWidth(block.Width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Foreground(fgColor)
	if isSelected {
		style = style.Bold(true)
	}

	return style.Render(text)
}
