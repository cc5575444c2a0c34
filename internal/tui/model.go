// Package tui is the terminal renderer: a tabbed, virtualized table over a
// workspace.Workspace, driven by a frame tick that polls for results.
package tui

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/export"
	"github.com/wethinkt/go-csvview/internal/i18n"
	"github.com/wethinkt/go-csvview/internal/registry"
	"github.com/wethinkt/go-csvview/internal/tui/theme"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/view"
	"github.com/wethinkt/go-csvview/internal/watch"
	"github.com/wethinkt/go-csvview/internal/workspace"
)

const defaultFrameInterval = 50 * time.Millisecond

// chromeLines counts the lines around the table body: tabs, column header,
// status bar and footer.
const chromeLines = 4

// Options configures the table model.
type Options struct {
	// Paths are opened one per tab.
	Paths []string
	// FrameInterval is how often the workspace is polled.
	FrameInterval time.Duration
	// FilterDebounce delays submitting a typed filter. Zero submits on
	// every keystroke.
	FilterDebounce time.Duration
	// Watcher, if set, is told about every loaded dataset.
	Watcher *watch.Watcher
	// Events delivers file changes from Watcher.
	Events <-chan watch.Event
}

type mode int

const (
	modeTable mode = iota
	modeFilter
	modeGlobalFilter
)

// cursor is the navigation state of one tab.
type cursor struct {
	row      int // position in the tab's row sequence
	offset   int // first drawn row
	col      int // focused dataset column
	firstCol int // first drawn position among the visible columns
}

// Model is the table view.
type Model struct {
	ws        *workspace.Workspace
	opts      Options
	keys      tableKeyMap
	inputKeys inputKeyMap
	help      help.Model
	input     textinput.Model
	spinner   spinner.Model

	cursors   map[view.ID]*cursor
	active    view.ID
	mode      mode
	showInfo  bool
	filterSeq int

	status    string
	statusErr bool
	width     int
	height    int
}

// NewModel creates a table view over ws and starts loading opts.Paths,
// one tab per file.
func NewModel(ws *workspace.Workspace, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameInterval
	}
	t := theme.Current()

	ti := textinput.New()
	ti.Placeholder = i18n.T("tui.filter.placeholder", "type to filter rows")
	ti.CharLimit = 256

	m := Model{
		ws:        ws,
		opts:      opts,
		keys:      defaultTableKeyMap(),
		inputKeys: defaultInputKeyMap(),
		help:      help.New(),
		input:     ti,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.GetAccent()))),
		),
		cursors: make(map[view.ID]*cursor),
	}

	for _, path := range opts.Paths {
		tab := ws.NewTab("")
		m.cursors[tab] = &cursor{}
		if m.active == 0 {
			m.active = tab
		}
		if err := ws.Open(path, tab); err != nil {
			tuilog.Log.Error("Open failed", "path", path, "error", err)
			continue
		}
		m.status = i18n.Tf("tui.status.loading", "Loading %s", filepath.Base(path))
	}
	if m.active == 0 {
		m.active = ws.NewTab("")
		m.cursors[m.active] = &cursor{}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	tuilog.Log.Info("Table.Init", "paths", len(m.opts.Paths))
	return tea.Batch(m.frameTick(), m.spinner.Tick, m.waitForFileEvent())
}

func (m Model) frameTick() tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) waitForFileEvent() tea.Cmd {
	events := m.opts.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return fileChangedMsg{event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampCursor()
		return m, nil

	case frameMsg:
		for _, ev := range m.ws.Poll() {
			m.handleEvent(ev)
		}
		m.clampCursor()
		return m, m.frameTick()

	case fileChangedMsg:
		path := msg.event.Path
		tuilog.Log.Info("Dataset changed on disk", "path", path, "type", msg.event.EventType)
		m.ws.Reload(path)
		m.setStatus(i18n.Tf("tui.status.reloading", "Reloading %s", filepath.Base(path)), false)
		return m, m.waitForFileEvent()

	case filterDebounceMsg:
		if msg.seq == m.filterSeq && m.mode != modeTable {
			m.applyFilter(m.input.Value())
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			tuilog.Log.Error("Export failed", "path", msg.path, "error", msg.err)
			m.setStatus(i18n.Tf("tui.status.exportFailed", "Export failed: %v", msg.err), true)
		} else {
			m.setStatus(i18n.Tf("tui.status.exported", "Wrote %s to %s",
				i18n.Tn("tui.rows", "{{.Count}} row", "{{.Count}} rows", msg.rows), msg.path), false)
		}
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			tuilog.Log.Warn("Clipboard copy failed", "error", msg.err)
			m.setStatus(i18n.Tf("tui.status.copyFailed", "Copy failed: %v", msg.err), true)
		} else {
			m.setStatus(i18n.Tn("tui.status.copied", "Copied {{.Count}} row", "Copied {{.Count}} rows", msg.rows), false)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != modeTable {
			return m.updateInput(msg)
		}
		return m.updateTable(msg)
	}

	if m.mode != modeTable {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleEvent(ev workspace.Event) {
	switch ev := ev.(type) {
	case workspace.DatasetLoaded:
		status := i18n.Tf("tui.status.loaded", "Loaded %s (%s)", filepath.Base(ev.Path),
			i18n.Tn("tui.rows", "{{.Count}} row", "{{.Count}} rows", ev.Rows))
		if ev.Skipped > 0 {
			status += ", " + i18n.Tn("tui.status.skipped",
				"{{.Count}} malformed row skipped", "{{.Count}} malformed rows skipped", ev.Skipped)
		}
		m.setStatus(status, false)
		if m.opts.Watcher != nil {
			if err := m.opts.Watcher.Add(ev.Path); err != nil {
				tuilog.Log.Warn("Cannot watch dataset", "path", ev.Path, "error", err)
			}
		}
	case workspace.LoadFailed:
		m.setStatus(i18n.Tf("tui.status.loadFailed", "Cannot load %s: %v", filepath.Base(ev.Path), ev.Err), true)
	case workspace.ResultDropped:
		tuilog.Log.Debug("Result dropped", "tab", ev.Tab)
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.inputKeys.Accept):
		m.applyFilter(m.input.Value())
		m.mode = modeTable
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.inputKeys.Cancel):
		m.input.SetValue("")
		m.applyFilter("")
		m.mode = modeTable
		m.input.Blur()
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == prev {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.submitFilter())
}

// submitFilter applies the typed filter now, or after the debounce delay if
// nothing else is typed in the meantime.
func (m *Model) submitFilter() tea.Cmd {
	if m.opts.FilterDebounce <= 0 {
		m.applyFilter(m.input.Value())
		return nil
	}
	m.filterSeq++
	seq := m.filterSeq
	return tea.Tick(m.opts.FilterDebounce, func(time.Time) tea.Msg {
		return filterDebounceMsg{seq: seq}
	})
}

func (m *Model) applyFilter(text string) {
	if m.mode == modeGlobalFilter {
		m.ws.SetGlobalFilter(text)
		for _, c := range m.cursors {
			c.row, c.offset = 0, 0
		}
		return
	}
	if err := m.ws.SetFilter(m.active, text); err != nil {
		tuilog.Log.Warn("SetFilter failed", "tab", m.active, "error", err)
		return
	}
	c := m.cur()
	c.row, c.offset = 0, 0
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.cur()
	total := m.rowCount()
	page := m.bodyHeight()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case m.help.ShowAll:
		// The help screen swallows everything else.
		return m, nil

	case key.Matches(msg, m.keys.Up):
		c.row--
	case key.Matches(msg, m.keys.Down):
		c.row++
	case key.Matches(msg, m.keys.PgUp):
		c.row -= page
	case key.Matches(msg, m.keys.PgDown):
		c.row += page
	case key.Matches(msg, m.keys.Home):
		c.row = 0
	case key.Matches(msg, m.keys.End):
		c.row = total - 1
	case key.Matches(msg, m.keys.Left):
		c.col = nextVisible(m.ws.Header(m.active), c.col, -1)
	case key.Matches(msg, m.keys.Right):
		c.col = nextVisible(m.ws.Header(m.active), c.col, 1)

	case key.Matches(msg, m.keys.Filter):
		info, _ := m.ws.Tab(m.active)
		return m, m.startInput(modeFilter, info.Filter)
	case key.Matches(msg, m.keys.GlobalFilter):
		return m, m.startInput(modeGlobalFilter, m.ws.GlobalFilter())
	case key.Matches(msg, m.keys.FilterColumn):
		m.toggleFilterColumn()
	case key.Matches(msg, m.keys.Sort):
		if err := m.ws.SetSort(m.active, c.col); err != nil {
			tuilog.Log.Warn("SetSort failed", "tab", m.active, "error", err)
		}
	case key.Matches(msg, m.keys.HideColumn):
		m.hideFocusedColumn()
	case key.Matches(msg, m.keys.ShowColumns):
		for i, col := range m.ws.Header(m.active) {
			if !col.Visible {
				_ = m.ws.ToggleColumn(m.active, i)
			}
		}

	case key.Matches(msg, m.keys.NewTab):
		info, _ := m.ws.Tab(m.active)
		tab := m.ws.NewTab(info.Dataset)
		m.cursors[tab] = &cursor{col: c.col}
		m.active = tab
	case key.Matches(msg, m.keys.CloseTab):
		m.closeTab()
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
	case key.Matches(msg, m.keys.NextDataset):
		m.switchDataset(1)
	case key.Matches(msg, m.keys.PrevDataset):
		m.switchDataset(-1)

	case key.Matches(msg, m.keys.Info):
		m.showInfo = !m.showInfo
	case key.Matches(msg, m.keys.CopyRow):
		return m, m.copyRows(false)
	case key.Matches(msg, m.keys.CopyAll):
		return m, m.copyRows(true)
	case key.Matches(msg, m.keys.Export):
		return m, m.exportView()
	case key.Matches(msg, m.keys.Reload):
		if info, _ := m.ws.Tab(m.active); info.Dataset != "" {
			m.ws.Reload(info.Dataset)
			m.setStatus(i18n.Tf("tui.status.reloading", "Reloading %s", filepath.Base(info.Dataset)), false)
		}
	}

	m.clampCursor()
	return m, nil
}

func (m *Model) startInput(md mode, value string) tea.Cmd {
	m.mode = md
	if md == modeGlobalFilter {
		m.input.Prompt = i18n.T("tui.filter.globalPrompt", "Filter all tabs: ")
	} else {
		m.input.Prompt = i18n.T("tui.filter.prompt", "Filter: ")
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m *Model) toggleFilterColumn() {
	info, ok := m.ws.Tab(m.active)
	if !ok {
		return
	}
	col := m.cur().col
	if info.FilterColumn == col {
		col = view.AllColumns
	}
	if err := m.ws.SetFilterColumn(m.active, col); err != nil {
		tuilog.Log.Warn("SetFilterColumn failed", "tab", m.active, "error", err)
	}
}

func (m *Model) hideFocusedColumn() {
	header := m.ws.Header(m.active)
	if len(visibleColumns(header)) <= 1 {
		return
	}
	c := m.cur()
	if err := m.ws.ToggleColumn(m.active, c.col); err != nil {
		tuilog.Log.Warn("ToggleColumn failed", "tab", m.active, "error", err)
		return
	}
	header = m.ws.Header(m.active)
	next := nextVisible(header, c.col, 1)
	if next == c.col {
		next = nextVisible(header, c.col, -1)
	}
	c.col = next
}

func (m *Model) closeTab() {
	tabs := m.ws.Tabs()
	if len(tabs) <= 1 {
		return
	}
	i := slices.Index(tabs, m.active)
	if err := m.ws.CloseTab(m.active); err != nil {
		return
	}
	delete(m.cursors, m.active)
	tabs = m.ws.Tabs()
	m.active = tabs[min(max(i, 0), len(tabs)-1)]
}

func (m *Model) switchTab(step int) {
	tabs := m.ws.Tabs()
	if len(tabs) == 0 {
		return
	}
	i := slices.Index(tabs, m.active)
	m.active = tabs[(i+step+len(tabs))%len(tabs)]
}

func (m *Model) switchDataset(step int) {
	ids := m.ws.Registry().Datasets()
	if len(ids) == 0 {
		return
	}
	info, _ := m.ws.Tab(m.active)
	i := slices.Index(ids, info.Dataset)
	if i < 0 {
		i = 0
		step = 0
	}
	next := ids[(i+step+len(ids))%len(ids)]
	if next == info.Dataset {
		return
	}
	if err := m.ws.SetDataset(m.active, next); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	*m.cur() = cursor{}
}

// rows returns the active tab's row sequence.
func (m Model) rows() (registry.Rows, registry.State) {
	return m.ws.TabRows(m.active)
}

func (m Model) rowCount() int {
	rows, _ := m.rows()
	return rows.Len()
}

func (m Model) cur() *cursor {
	c, ok := m.cursors[m.active]
	if !ok {
		c = &cursor{}
		m.cursors[m.active] = c
	}
	return c
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeLines, 1)
}

// clampCursor keeps the active tab's cursor on an existing row and a
// visible column.
func (m Model) clampCursor() {
	c := m.cur()
	// Keep the row position until the pending result arrives.
	if !m.ws.Computing(m.active) {
		total := m.rowCount()
		c.row = min(max(c.row, 0), max(total-1, 0))
		c.offset = scrollOffset(c.row, c.offset, m.bodyHeight())
		c.offset = min(max(c.offset, 0), max(total-m.bodyHeight(), 0))
	}

	header := m.ws.Header(m.active)
	if len(header) == 0 {
		return
	}
	if c.col < 0 || c.col >= len(header) || !header[c.col].Visible {
		c.col = nextVisible(header, -1, 1)
	}
}

func (m Model) copyRows(all bool) tea.Cmd {
	rows, _ := m.rows()
	if rows.Len() == 0 {
		return nil
	}
	sel := export.Selection{Columns: visibleColumns(m.ws.Header(m.active))}
	if all {
		sel.Rows = rows.Indices()
	} else {
		sel.Rows = []int{rows.Index(m.cur().row)}
	}
	store := rows.Store()
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := export.CSV(&buf, store, sel); err != nil {
			return copyDoneMsg{err: err}
		}
		return copyDoneMsg{rows: len(sel.Rows), err: clipboard.WriteAll(buf.String())}
	}
}

func (m Model) exportView() tea.Cmd {
	rows, state := m.rows()
	if state == registry.NotComputed || rows.Store() == nil {
		return nil
	}
	store := rows.Store()
	sel := export.Selection{Rows: rows.Indices(), Columns: visibleColumns(m.ws.Header(m.active))}
	path := exportPath(store.Path)
	return func() tea.Msg {
		err := export.WriteCSVFile(path, store, sel)
		return exportDoneMsg{path: path, rows: len(sel.Rows), err: err}
	}
}

// exportPath returns where the view of the dataset at path is written:
// name.csv becomes name.view.csv next to it.
func exportPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(path), name+".view.csv")
}

// visibleColumns returns the indices of the visible columns of header.
func visibleColumns(header []dataset.Column) []int {
	var cols []int
	for i, c := range header {
		if c.Visible {
			cols = append(cols, i)
		}
	}
	return cols
}

// nextVisible returns the first visible column after from in direction
// step, or from itself when there is none.
func nextVisible(header []dataset.Column, from, step int) int {
	for i := from + step; i >= 0 && i < len(header); i += step {
		if header[i].Visible {
			return i
		}
	}
	return from
}

func (m Model) View() tea.View {
	v := tea.NewView(m.viewContent())
	v.AltScreen = true
	return v
}

func (m Model) viewContent() string {
	if m.width == 0 || m.height == 0 {
		return m.spinner.View() + " " + i18n.T("common.loading", "Loading...")
	}
	tabs := m.renderTabs()
	if m.help.ShowAll {
		return lipgloss.JoinVertical(lipgloss.Left, tabs, "", m.help.View(m.keys))
	}

	tableWidth := m.width
	if m.showInfo {
		tableWidth = max(m.width-infoPanelWidth-1, 10)
	}
	body := m.renderTable(tableWidth, m.bodyHeight())
	if m.showInfo {
		info, _ := m.ws.Tab(m.active)
		cols, ok := m.ws.Profile(info.Dataset)
		panel := renderInfo(cols, ok, m.cur().col, m.bodyHeight()+1)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", panel)
	}

	footer := m.help.View(m.keys)
	if m.mode != modeTable {
		footer = m.input.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabs, body, m.renderStatus(), footer)
}

func (m Model) renderTabs() string {
	s := GetStyles()
	var parts []string
	for _, id := range m.ws.Tabs() {
		info, _ := m.ws.Tab(id)
		label := i18n.T("tui.tab.empty", "(empty)")
		if info.Dataset != "" {
			label = filepath.Base(info.Dataset)
		}
		if info.Filter != "" || info.Sort.Active {
			label += "*"
		}
		label = fmt.Sprintf("%d:%s", id, label)
		if id == m.active {
			parts = append(parts, s.TabActive.Render(label))
		} else {
			parts = append(parts, s.TabInactive.Render(label))
		}
	}
	if g := m.ws.GlobalFilter(); g != "" {
		parts = append(parts, s.Badge.Render(i18n.Tf("tui.tab.global", "all tabs: %s", g)))
	}
	return ansiFit(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width)
}

// renderTable renders the column header and height body lines.
func (m Model) renderTable(width, height int) string {
	s := GetStyles()
	info, _ := m.ws.Tab(m.active)
	header := m.ws.Header(m.active)

	if header == nil {
		var msg string
		switch {
		case info.Dataset == "":
			msg = i18n.T("tui.status.noDataset", "No dataset open")
		case m.ws.Loading(info.Dataset):
			msg = m.spinner.View() + " " + i18n.Tf("tui.status.loading", "Loading %s", filepath.Base(info.Dataset))
		default:
			msg = i18n.Tf("tui.status.notLoaded", "%s is not loaded", filepath.Base(info.Dataset))
		}
		return padLines(s.Muted.Render(msg), width, height+1)
	}

	c := m.cur()
	win, state := m.ws.Rows(m.active, c.offset, c.offset+height)
	cols := visibleColumns(header)
	widths := columnWidths(header, win.Rows, cols)
	focus := max(slices.Index(cols, c.col), 0)
	c.firstCol = layoutColumns(widths, c.firstCol, focus, width)

	// Columns that fit from firstCol; at least one is always drawn.
	last := c.firstCol
	for used := 0; last < len(cols); last++ {
		used += widths[last] + columnGap
		if used > width && last > c.firstCol {
			break
		}
	}
	drawn := cols[c.firstCol:last]
	drawnWidths := widths[c.firstCol:last]

	term := m.ws.EffectiveFilter(m.active)
	termCol := info.FilterColumn
	if m.ws.GlobalFilter() != "" {
		termCol = view.AllColumns
	}

	var lines []string
	var hb strings.Builder
	for i, col := range drawn {
		st := s.Header
		switch {
		case header[col].Sort != nil:
			st = s.HeaderSorted
		case col == info.FilterColumn:
			st = s.HeaderFilter
		}
		if col == c.col {
			st = st.Underline(true)
		}
		hb.WriteString(st.Render(fitWidth(header[col].Name+sortIndicator(header[col]), drawnWidths[i])))
		hb.WriteString(strings.Repeat(" ", columnGap))
	}
	lines = append(lines, ansiFit(hb.String(), width))

	switch {
	case state == registry.Empty:
		lines = append(lines, s.Muted.Render(i18n.T("tui.status.noMatches", "No matching rows")))
		return padLines(strings.Join(lines, "\n"), width, height+1)
	case state == registry.NotComputed && m.ws.Computing(m.active):
		lines = append(lines, m.spinner.View()+" "+s.Muted.Render(i18n.T("tui.status.computing", "Computing...")))
		return padLines(strings.Join(lines, "\n"), width, height+1)
	}

	for pos := c.offset; pos < c.offset+height; pos++ {
		row, ok := rowAt(win, pos)
		if !ok {
			break
		}
		base := s.Cell
		if pos%2 == 1 {
			base = s.CellAlt
		}
		if pos == c.row {
			base = s.RowSelected
		}
		var rb strings.Builder
		for i, col := range drawn {
			cellTerm := term
			if termCol >= 0 && termCol != col {
				cellTerm = ""
			}
			rb.WriteString(renderCell(row[col], cellTerm, drawnWidths[i], base, s.Match))
			rb.WriteString(base.Render(strings.Repeat(" ", columnGap)))
		}
		lines = append(lines, ansiFit(rb.String(), width))
	}
	return padLines(strings.Join(lines, "\n"), width, height+1)
}

func (m Model) renderStatus() string {
	s := GetStyles()
	info, _ := m.ws.Tab(m.active)
	rows, _ := m.rows()

	var left []string
	if info.Dataset != "" {
		left = append(left, filepath.Base(info.Dataset))
	}
	if n := rows.Len(); n > 0 {
		left = append(left, i18n.Tf("tui.status.position", "row %d/%d", m.cur().row+1, n))
	}
	if info.Filter != "" && m.ws.GlobalFilter() == "" {
		left = append(left, i18n.Tf("tui.status.filter", "filter %q", info.Filter))
	}
	if info.Sort.Active {
		if header := m.ws.Header(m.active); info.Sort.Column < len(header) {
			left = append(left, i18n.Tf("tui.status.sort", "sort %s %s", header[info.Sort.Column].Name, info.Sort.Direction))
		}
	}

	busy := ""
	if m.ws.Pending(m.active) || (info.Dataset != "" && m.ws.Loading(info.Dataset)) {
		busy = m.spinner.View() + " "
	}

	style := s.StatusBar
	if m.statusErr {
		style = s.StatusError
	}
	line := busy + strings.Join(left, " · ")
	if m.status != "" {
		line += "  " + m.status
	}
	return style.Render(fitWidth(line, m.width))
}

// padLines pads s with blank lines to exactly n lines of width cells.
func padLines(s string, width, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
