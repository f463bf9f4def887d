package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Header displays the scan root and a summary of the result
type Header struct {
	root     string
	width    int
	scanning bool
	total    uint64
	dirs     int
	warnings int
	hasData  bool
}

// NewHeader creates a new header component
func NewHeader(root string) Header {
	return Header{root: root}
}

// SetRoot sets the displayed scan root
func (h *Header) SetRoot(root string) {
	h.root = root
}

// SetScanning sets the scanning state
func (h *Header) SetScanning(scanning bool) {
	h.scanning = scanning
}

// SetSummary sets the result summary shown when not scanning
func (h *Header) SetSummary(total uint64, dirs, warnings int) {
	h.total = total
	h.dirs = dirs
	h.warnings = warnings
	h.hasData = true
}

// ClearSummary hides the result summary
func (h *Header) ClearSummary() {
	h.hasData = false
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
func (h Header) View() string {
	appName := AppNameStyle.Render("DIRSIZER")
	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" │ ")
	root := StatsStyle.Render(h.root)

	// Stats (only show when not scanning - scanning status shown in center panel)
	var stats, statsCompact string
	if !h.scanning && h.hasData {
		statsCompact = StatsStyle.Render(FormatSize(h.total))
		stats = StatsStyle.Render(fmt.Sprintf("%s in %s directories",
			FormatSize(h.total), humanize.Comma(int64(h.dirs))))
		if h.warnings > 0 {
			stats += WarningStyle.Render(fmt.Sprintf("  %d unreadable", h.warnings))
		}
	}

	left := appName + sep + root
	leftWidth := lipgloss.Width(left)

	// For narrow terminals, progressively hide elements
	if h.width < leftWidth+lipgloss.Width(stats)+2 {
		stats = statsCompact
	}
	if h.width < leftWidth+lipgloss.Width(stats)+2 {
		stats = ""
	}

	gap := max(h.width-leftWidth-lipgloss.Width(stats)-2, 1)
	line := left + strings.Repeat(" ", gap) + stats

	return HeaderStyle.MaxHeight(1).Render(line)
}
