package ui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/lumipallolabs/dirsizer/internal/core"
	"github.com/lumipallolabs/dirsizer/internal/logging"
	"github.com/lumipallolabs/dirsizer/internal/model"
	"github.com/lumipallolabs/dirsizer/internal/prefs"
)

// Config wires the application to its collaborators
type Config struct {
	Controller *core.Controller
	Prefs      *prefs.Manager // may be nil
	Root       string
	Sort       model.SortKey
}

// scanStartMsg triggers the actual scan start (after UI has rendered)
type scanStartMsg struct{}

// scanEventMsg carries one controller event
type scanEventMsg struct {
	event core.Event
}

const (
	sizeColumnWidth  = 10
	shareColumnWidth = 7
	minTableWidth    = 40
)

// App is the main application model
type App struct {
	// Components
	header   Header
	table    table.Model
	treemap  TreemapPanel
	progress progress.Model
	help     help.Model

	// State
	keys   KeyMap
	ctx    context.Context
	ctrl   *core.Controller
	prefs  *prefs.Manager
	events <-chan core.Event

	// Data
	root    string
	sortKey model.SortKey
	result  *model.ScanResult
	entries []model.DirectoryEntry // in table row order

	// UI state
	scanning    bool
	scanStatus  model.Progress
	showTreemap bool
	notice      string
	err         error

	// Dimensions
	width  int
	height int
}

// NewApp creates a new application instance
func NewApp(ctx context.Context, cfg Config) App {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ColorPrimary).
		Bold(true)
	t.SetStyles(styles)

	return App{
		header:      NewHeader(cfg.Root),
		table:       t,
		treemap:     NewTreemapPanel(),
		progress:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:        help.New(),
		keys:        DefaultKeyMap(),
		ctx:         ctx,
		ctrl:        cfg.Controller,
		prefs:       cfg.Prefs,
		root:        cfg.Root,
		sortKey:     cfg.Sort,
		showTreemap: true,
	}
}

// Run starts the interactive program and blocks until it exits. It returns
// the last scan error, if any, so the caller can pick an exit code.
func Run(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(NewApp(ctx, cfg), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return err
	}
	if app, ok := final.(App); ok {
		return app.err
	}
	return nil
}

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("DIRSIZER"), func() tea.Msg {
		return scanStartMsg{}
	})
}

// startScan asks the controller for a new scan and starts listening to it
func (a *App) startScan() tea.Cmd {
	events, err := a.ctrl.Start(a.ctx, a.root)
	if err != nil {
		logging.Debug.Printf("[UI] Cannot start scan: %v", err)
		a.err = err
		return nil
	}

	a.err = nil
	a.notice = ""
	a.scanning = true
	a.scanStatus = model.Progress{}
	a.events = events
	a.header.SetScanning(true)
	return waitForEvent(events)
}

// waitForEvent returns a command that waits for the next controller event
func waitForEvent(events <-chan core.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil // Channel closed
		}
		return scanEventMsg{event: ev}
	}
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case scanStartMsg:
		return a, a.startScan()

	case scanEventMsg:
		a.handleEvent(msg.event)
		return a, waitForEvent(a.events)
	}

	return a, nil
}

// handleEvent applies one controller event
func (a *App) handleEvent(ev core.Event) {
	switch ev := ev.(type) {
	case core.ScanStartedEvent:
		logging.Debug.Printf("[UI] Scan of %s started", ev.Root)
		a.header.SetRoot(ev.Root)
		a.header.ClearSummary()
		a.setResult(nil)

	case core.ScanProgressEvent:
		a.scanStatus = ev.Progress

	case core.ScanCompletedEvent:
		a.scanning = false
		a.header.SetScanning(false)
		a.setResult(ev.Result)
		if a.prefs != nil {
			a.prefs.SetLastRoot(ev.Result.Root)
		}

	case core.ScanCancelledEvent:
		a.scanning = false
		a.header.SetScanning(false)
		a.notice = "Scan cancelled"

	case core.ErrorEvent:
		a.scanning = false
		a.header.SetScanning(false)
		a.err = ev.Err
	}
}

// handleKey handles keyboard input
func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.ctrl.Cancel()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		a.updateLayout()
		return a, nil

	case key.Matches(msg, a.keys.Cancel):
		if a.scanning {
			a.ctrl.Cancel()
		}
		return a, nil

	case key.Matches(msg, a.keys.Rescan):
		if a.scanning {
			return a, nil
		}
		return a, a.startScan()

	case key.Matches(msg, a.keys.SortSize):
		a.setSort(model.BySize)
		return a, nil

	case key.Matches(msg, a.keys.SortPath):
		a.setSort(model.ByPath)
		return a, nil

	case key.Matches(msg, a.keys.Treemap):
		a.showTreemap = !a.showTreemap
		a.updateLayout()
		return a, nil

	case key.Matches(msg, a.keys.Enter):
		a.treemap.ZoomIn()
		a.syncTableToTreemap()
		return a, nil

	case key.Matches(msg, a.keys.Back):
		a.treemap.ZoomOut()
		a.syncTableToTreemap()
		return a, nil
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	a.syncTreemapToTable()
	return a, cmd
}

// setResult shows res, or clears the view when res is nil
func (a *App) setResult(res *model.ScanResult) {
	a.result = res
	a.treemap.SetResult(res)
	if res != nil {
		a.header.SetSummary(res.TotalSize(), len(res.Entries), len(res.Warnings))
	}
	a.refreshRows()
	a.syncTableToTreemap()
}

// setSort re-sorts the table and remembers the choice
func (a *App) setSort(k model.SortKey) {
	if a.sortKey == k {
		return
	}
	selected := a.selectedPath()
	a.sortKey = k
	if a.prefs != nil {
		a.prefs.SetSort(k.String())
	}
	a.refreshRows()
	a.selectRow(selected)
}

// refreshRows rebuilds the table rows from the current result
func (a *App) refreshRows() {
	a.entries = nil
	if a.result != nil {
		a.entries = model.Sort(a.result.Entries, a.sortKey)
	}
	a.table.SetRows(buildRows(a.result, a.entries))
	a.table.SetCursor(0)
}

// buildRows formats entries as table rows with paths relative to the root
func buildRows(res *model.ScanResult, entries []model.DirectoryEntry) []table.Row {
	if res == nil {
		return nil
	}
	total := res.TotalSize()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		share := "-"
		if total > 0 {
			share = fmt.Sprintf("%.1f%%", 100*float64(e.SizeBytes)/float64(total))
		}
		rel, err := filepath.Rel(res.Root, e.Path)
		if err != nil {
			rel = e.Path
		}
		rows = append(rows, table.Row{FormatSize(e.SizeBytes), share, rel})
	}
	return rows
}

func (a App) selectedPath() string {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.entries) {
		return ""
	}
	return a.entries[i].Path
}

func (a *App) selectRow(path string) {
	for i, e := range a.entries {
		if e.Path == path {
			a.table.SetCursor(i)
			return
		}
	}
}

func (a *App) syncTreemapToTable() {
	if path := a.selectedPath(); path != "" {
		a.treemap.SetSelected(path)
	}
}

func (a *App) syncTableToTreemap() {
	if path := a.treemap.Selected(); path != "" {
		a.selectRow(path)
	}
}

// columns returns table columns for the given width
func columns(width int) []table.Column {
	pathWidth := max(width-sizeColumnWidth-shareColumnWidth-6, 10)
	return []table.Column{
		{Title: "Size", Width: sizeColumnWidth},
		{Title: "Share", Width: shareColumnWidth},
		{Title: "Path", Width: pathWidth},
	}
}

// updateLayout calculates component sizes based on window dimensions
func (a *App) updateLayout() {
	headerHeight := 1
	helpHeight := lipgloss.Height(a.help.View(a.keys))

	panelHeight := max(a.height-headerHeight-helpHeight-1, 3)

	tableWidth := a.width
	if a.showTreemap {
		tableWidth = max(a.width/2, minTableWidth)
		a.treemap.SetSize(max(a.width-tableWidth, 0), panelHeight)
	}

	a.header.SetWidth(a.width)
	a.help.Width = a.width
	a.progress.Width = min(max(a.width/2, 20), 60)

	// Panel border takes one row and column on each side
	a.table.SetColumns(columns(tableWidth - 2))
	a.table.SetWidth(tableWidth - 2)
	a.table.SetHeight(panelHeight - 2)
}

// View implements tea.Model
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		if a.scanning {
			return "Scanning..."
		}
		return "Loading..."
	}

	sections := []string{a.header.View()}

	if a.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("Error: %v", a.err)))
	} else if a.notice != "" {
		sections = append(sections, WarningStyle.Padding(0, 1).Render(a.notice))
	}

	panelHeight := max(a.height-1-lipgloss.Height(a.help.View(a.keys))-len(sections)+1, 3)

	switch {
	case a.scanning:
		sections = append(sections, lipgloss.Place(
			a.width, panelHeight,
			lipgloss.Center, lipgloss.Center,
			a.scanBox(),
		))
	case a.result != nil:
		panels := TablePanelStyle.Render(a.table.View())
		if a.showTreemap {
			panels = lipgloss.JoinHorizontal(lipgloss.Top, panels, a.treemap.View())
		}
		sections = append(sections, panels)
	default:
		hint := HelpStyle.Render("No results. Press r to scan.")
		sections = append(sections, lipgloss.Place(a.width, panelHeight, lipgloss.Center, lipgloss.Center, hint))
	}

	sections = append(sections, HelpStyle.Render(a.help.View(a.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// scanBox renders the centered progress box
func (a App) scanBox() string {
	var status string
	if a.scanStatus.Total == 0 {
		status = ActiveStyle.Render("Counting directories...")
	} else {
		status = ActiveStyle.Render(fmt.Sprintf("Measuring %s/%s directories",
			humanize.Comma(int64(a.scanStatus.Completed)),
			humanize.Comma(int64(a.scanStatus.Total))))
	}

	bar := a.progress.ViewAs(a.scanStatus.Fraction())
	hint := HelpStyle.Render("c to cancel")

	return ScanBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, status, "", bar, "", hint))
}
