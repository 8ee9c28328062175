package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/layout"
	"github.com/freightdesk/gridkit/internal/source"
	"github.com/freightdesk/gridkit/internal/ui/styles"
)

// ═══════════════════════════════════════════════════════════════════════════
// Constants
// ═══════════════════════════════════════════════════════════════════════════

const (
	defaultColWidth = 20
	minColWidth     = 3
	hiddenColWidth  = 3
	gutterWidth     = 3 // selection mark, expansion mark, space
	chromeLines     = 5 // title, prompt, header, separator, footer
)

type tableMode int

const (
	modeNormal tableMode = iota
	modeFilter
	modeEdit
	modeResize
)

// Exit mode: what to print after quitting the TUI
type exitMode int

const (
	exitNormal exitMode = iota
	exitJSON
	exitRaw
	exitPlain
)

// Options configures the interactive grid.
type Options struct {
	Title string

	// Source serves server-mode filters. Without one, every filter is
	// applied locally.
	Source        source.Backend
	Query         source.Query
	FilterTimeout time.Duration

	DefaultWidth int
	MinWidth     int
	ResizeStep   int

	// Renderer draws expanded rows; nil uses FieldRenderer.
	Renderer grid.SubRowRenderer

	// Layouts and LayoutName enable saving the layout on quit and ctrl+s.
	Layouts    *layout.Store
	LayoutName string

	Logger *slog.Logger
	Output io.Writer
}

func (o *Options) setDefaults() {
	if o.FilterTimeout <= 0 {
		o.FilterTimeout = 30 * time.Second
	}
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = defaultColWidth
	}
	if o.MinWidth <= 0 {
		o.MinWidth = minColWidth
	}
	if o.ResizeStep <= 0 {
		o.ResizeStep = 2
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.Title == "" {
		o.Title = "grid"
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Model
// ═══════════════════════════════════════════════════════════════════════════

type gridModel struct {
	grid    *grid.Grid
	opts    Options
	visible []grid.VisibleRow

	cursor    int // index into visible
	colCursor int // index into main-row columns
	subCursor int // index into resolved sub-row columns
	scrollX   int
	scrollY   int
	width     int
	height    int
	ready     bool

	mode      tableMode
	input     textinput.Model
	inputCol  string
	resizeX   int
	dragMouse bool

	spinner  spinner.Model
	pending  int
	exitMode exitMode

	statusMsg   string
	statusErr   bool
	statusUntil time.Time
}

// ═══════════════════════════════════════════════════════════════════════════
// Key Bindings
// ═══════════════════════════════════════════════════════════════════════════

type tableKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Sort        key.Binding
	Filter      key.Binding
	ClearFilter key.Binding
	Select      key.Binding
	Deselect    key.Binding
	Expand      key.Binding
	Edit        key.Binding
	EditSub     key.Binding
	SubPrev     key.Binding
	SubNext     key.Binding
	ToSubRow    key.Binding
	FromSubRow  key.Binding
	SubUp       key.Binding
	SubDown     key.Binding
	Narrow      key.Binding
	Widen       key.Binding
	Hide        key.Binding
	YankCell    key.Binding
	YankRow     key.Binding
	SaveLayout  key.Binding
	ExportJSON  key.Binding
	ExportRaw   key.Binding
	ExportPlain key.Binding
	Quit        key.Binding
}

var tableKeys = tableKeyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
	PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Home:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
	End:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
	Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter column")),
	ClearFilter: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filter")),
	Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	Deselect:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
	Expand:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "expand")),
	Edit:        key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit cell")),
	EditSub:     key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit sub-row field")),
	SubPrev:     key.NewBinding(key.WithKeys("("), key.WithHelp("(", "prev sub-row field")),
	SubNext:     key.NewBinding(key.WithKeys(")"), key.WithHelp(")", "next sub-row field")),
	ToSubRow:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "move column to sub-row")),
	FromSubRow:  key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "move field to main row")),
	SubUp:       key.NewBinding(key.WithKeys("["), key.WithHelp("[", "field earlier")),
	SubDown:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "field later")),
	Narrow:      key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrow")),
	Widen:       key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "widen")),
	Hide:        key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "hide/show")),
	YankCell:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
	YankRow:     key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy row(s)")),
	SaveLayout:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save layout")),
	ExportJSON:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "print as JSON")),
	ExportRaw:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "print raw")),
	ExportPlain: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "print table")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ═══════════════════════════════════════════════════════════════════════════
// Entry Point
// ═══════════════════════════════════════════════════════════════════════════

// RunGridTUI launches the interactive grid over g. It blocks until the
// user quits. If the user requests an export (J/R/P), the visible rows
// are printed to opts.Output after the TUI exits.
func RunGridTUI(g *grid.Grid, opts Options) error {
	m := newGridModel(g, opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(gridModel)
	if !ok {
		return nil
	}
	headers, rows := ExportRows(g)
	switch fm.exitMode {
	case exitJSON:
		return PrintJSONResults(fm.opts.Output, headers, rows)
	case exitRaw:
		PrintRaw(fm.opts.Output, rows)
	case exitPlain:
		return PrintPlainTable(fm.opts.Output, headers, rows)
	}
	return nil
}

func newGridModel(g *grid.Grid, opts Options) gridModel {
	opts.setDefaults()

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Warning)

	m := gridModel{
		grid:    g,
		opts:    opts,
		input:   ti,
		spinner: sp,
	}
	m.refresh()
	return m
}

// ═══════════════════════════════════════════════════════════════════════════
// Messages
// ═══════════════════════════════════════════════════════════════════════════

// filterSettledMsg carries the outcome of one server filter request.
type filterSettledMsg struct {
	column string
	rows   []grid.Row
	err    error
}

// rowsLoadedMsg carries a plain reload.
type rowsLoadedMsg struct {
	rows []grid.Row
	err  error
}

type statusClearMsg struct{}

// ═══════════════════════════════════════════════════════════════════════════
// Bubble Tea Interface
// ═══════════════════════════════════════════════════════════════════════════

func (m gridModel) Init() tea.Cmd {
	return nil
}

func (m gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case statusClearMsg:
		if !m.statusUntil.IsZero() && time.Now().After(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case filterSettledMsg:
		return m.handleFilterSettled(msg)

	case rowsLoadedMsg:
		if msg.err != nil {
			m.opts.Logger.Warn("reload failed", "err", msg.err)
			return m, m.setError(fmt.Sprintf("reload failed: %s", msg.err))
		}
		m.replaceRows(msg.rows)
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilterInput(msg)
		case modeEdit:
			return m.updateEditInput(msg)
		case modeResize:
			return m.updateResize(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m gridModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, tableKeys.Quit):
		m.saveLayout()
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Left):
		if m.colCursor > 0 {
			m.colCursor--
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Right):
		if m.colCursor < len(m.mainColumns())-1 {
			m.colCursor++
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.PageUp):
		m.cursor = max(m.cursor-m.visibleLineCount(), 0)
		m.ensureRowVisible()

	case key.Matches(msg, tableKeys.PageDown):
		m.cursor = max(min(m.cursor+m.visibleLineCount(), len(m.visible)-1), 0)
		m.ensureRowVisible()

	case key.Matches(msg, tableKeys.Home):
		m.cursor = 0
		m.scrollY = 0
		m.scrollX = 0

	case key.Matches(msg, tableKeys.End):
		if len(m.visible) > 0 {
			m.cursor = len(m.visible) - 1
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Sort):
		return m, m.toggleSort()

	case key.Matches(msg, tableKeys.Filter):
		return m.beginFilter()

	case key.Matches(msg, tableKeys.ClearFilter):
		return m, m.clearFilter()

	case key.Matches(msg, tableKeys.Select):
		if vr, ok := m.currentRow(); ok {
			m.grid.ToggleSelected(vr.Index)
			m.refresh()
		}

	case key.Matches(msg, tableKeys.Deselect):
		m.grid.ClearSelection()
		m.refresh()

	case key.Matches(msg, tableKeys.Expand):
		if vr, ok := m.currentRow(); ok {
			m.grid.ToggleExpanded(vr.Index)
			m.refresh()
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Edit):
		col, ok := m.currentColumn()
		if !ok {
			return m, nil
		}
		return m.beginEdit(col.Key)

	case key.Matches(msg, tableKeys.EditSub):
		return m.beginSubEdit()

	case key.Matches(msg, tableKeys.SubPrev):
		m.moveSubCursor(-1)

	case key.Matches(msg, tableKeys.SubNext):
		m.moveSubCursor(1)

	case key.Matches(msg, tableKeys.ToSubRow):
		return m, m.toSubRow()

	case key.Matches(msg, tableKeys.FromSubRow):
		return m, m.fromSubRow()

	case key.Matches(msg, tableKeys.SubUp):
		m.moveSubField(-1)

	case key.Matches(msg, tableKeys.SubDown):
		m.moveSubField(1)

	case key.Matches(msg, tableKeys.Narrow):
		return m.beginKeyboardResize(-m.opts.ResizeStep)

	case key.Matches(msg, tableKeys.Widen):
		return m.beginKeyboardResize(m.opts.ResizeStep)

	case key.Matches(msg, tableKeys.Hide):
		if col, ok := m.currentColumn(); ok {
			_ = m.grid.ToggleHidden(col.Key)
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.YankCell):
		return m, m.yankCell()

	case key.Matches(msg, tableKeys.YankRow):
		return m, m.yankRows()

	case key.Matches(msg, tableKeys.SaveLayout):
		if m.opts.Layouts == nil || m.opts.LayoutName == "" {
			return m, m.setError("no layout name (start with --layout <name>)")
		}
		if err := m.saveLayout(); err != nil {
			return m, m.setError(err.Error())
		}
		return m, m.setStatus("Layout saved: " + m.opts.LayoutName)

	case key.Matches(msg, tableKeys.ExportJSON):
		m.exitMode = exitJSON
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportRaw):
		m.exitMode = exitRaw
		return m, tea.Quit

	case key.Matches(msg, tableKeys.ExportPlain):
		m.exitMode = exitPlain
		return m, tea.Quit
	}

	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Sort / filter
// ═══════════════════════════════════════════════════════════════════════════

func (m *gridModel) toggleSort() tea.Cmd {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	if !col.Sortable {
		return m.setError(col.Label + " is not sortable")
	}
	if _, _, err := m.grid.ToggleSort(col.Key); err != nil {
		return m.setError(err.Error())
	}
	m.refresh()
	return nil
}

func (m gridModel) beginFilter() (tea.Model, tea.Cmd) {
	col, ok := m.currentColumn()
	if !ok {
		return m, nil
	}
	if !col.Filterable {
		return m, m.setError(col.Label + " is not filterable")
	}
	value, _ := m.grid.FilterValue(col.Key)
	m.mode = modeFilter
	m.inputCol = col.Key
	m.input.Placeholder = "contains..."
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m gridModel) updateFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.input.Blur()
		spec := grid.FilterSpec{Column: m.inputCol, Value: strings.TrimSpace(m.input.Value())}
		return m, m.applyFilter(spec)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyFilter commits local filters at once and sends server filters
// through the source on a command goroutine.
func (m *gridModel) applyFilter(spec grid.FilterSpec) tea.Cmd {
	col, ok := m.grid.Column(spec.Column)
	if !ok {
		return m.setError("unknown column " + spec.Column)
	}

	if col.FilterMode != grid.FilterServer || m.opts.Source == nil {
		if err := m.grid.ApplyFilter(context.Background(), spec); err != nil {
			return m.setError(err.Error())
		}
		m.refresh()
		return nil
	}

	var fetched []grid.Row
	op := source.ServerFilter(m.opts.Source, m.opts.Query, func(rows []grid.Row) { fetched = rows })
	run, err := m.grid.FilterRequest(spec, op)
	if err != nil {
		return m.setError(err.Error())
	}

	m.pending++
	m.opts.Logger.Debug("server filter issued", "column", spec.Column, "value", spec.Value)
	timeout := m.opts.FilterTimeout
	request := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := run(ctx)
		return filterSettledMsg{column: spec.Column, rows: fetched, err: err}
	}
	if m.pending == 1 {
		return tea.Batch(request, m.spinner.Tick)
	}
	return request
}

func (m gridModel) handleFilterSettled(msg filterSettledMsg) (tea.Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}
	switch {
	case errors.Is(msg.err, grid.ErrStaleFilter):
		return m, nil
	case errors.Is(msg.err, grid.ErrFilterRebased):
		m.refresh()
		return m, m.reloadCmd()
	case msg.err != nil:
		return m, m.setError(fmt.Sprintf("filter %s failed: %s", msg.column, msg.err))
	}
	m.replaceRows(msg.rows)
	return m, m.setStatus(fmt.Sprintf("%d rows", len(msg.rows)))
}

func (m *gridModel) clearFilter() tea.Cmd {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	if _, active := m.grid.FilterValue(col.Key); !active && !m.grid.FilterPending(col.Key) {
		return nil
	}
	m.grid.ClearFilter(col.Key)
	m.refresh()
	if col.FilterMode == grid.FilterServer {
		return m.reloadCmd()
	}
	return nil
}

// reloadCmd refetches with the committed server filters.
func (m gridModel) reloadCmd() tea.Cmd {
	if m.opts.Source == nil {
		return nil
	}
	src := m.opts.Source
	q := m.opts.Query
	q.Filters = source.ServerSpecs(m.grid.Filters())
	timeout := m.opts.FilterTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rows, err := src.Fetch(ctx, q)
		return rowsLoadedMsg{rows: rows, err: err}
	}
}

// replaceRows hands fresh rows to the engine and leaves edit mode when
// the engine dropped the open edit.
func (m *gridModel) replaceRows(rows []grid.Row) {
	m.grid.SetRows(rows)
	if m.mode == modeEdit && !m.grid.EditState().Editing() {
		m.mode = modeNormal
		m.input.Blur()
		m.setError("edit discarded: row no longer loaded")
	}
	m.refresh()
}

// ═══════════════════════════════════════════════════════════════════════════
// Editing
// ═══════════════════════════════════════════════════════════════════════════

func (m gridModel) beginEdit(column string) (tea.Model, tea.Cmd) {
	vr, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	if err := m.grid.StartEdit(vr.Index, column); err != nil {
		return m, m.setError(err.Error())
	}
	m.mode = modeEdit
	m.input.Placeholder = ""
	m.input.SetValue(m.grid.EditState().Draft)
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

func (m gridModel) beginSubEdit() (tea.Model, tea.Cmd) {
	vr, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	fields := m.grid.ResolvedSubRowColumns()
	if len(fields) == 0 {
		return m, m.setError("no sub-row columns (S moves a column there)")
	}
	if !vr.Expanded {
		m.grid.ToggleExpanded(vr.Index)
		m.refresh()
	}
	m.subCursor = clamp(m.subCursor, 0, len(fields)-1)
	return m.beginEdit(fields[m.subCursor].Key)
}

func (m gridModel) updateEditInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.grid.CancelEdit()
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		st := m.grid.EditState()
		before := ""
		if row, ok := m.grid.Row(st.Target.Row); ok {
			before = grid.FormatValue(row[st.Target.Column])
		}
		m.mode = modeNormal
		m.input.Blur()
		if err := m.grid.CommitDraft(); err != nil {
			return m, m.setError(err.Error())
		}
		m.refresh()
		m.opts.Logger.Info("cell edited", "row", st.Target.Row, "column", st.Target.Column)
		return m, m.setStatus(st.Target.Column + ": " + EditSummary(before, st.Draft))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.grid.SetDraft(m.input.Value())
	return m, cmd
}

// ═══════════════════════════════════════════════════════════════════════════
// Sub-row columns
// ═══════════════════════════════════════════════════════════════════════════

func (m *gridModel) toSubRow() tea.Cmd {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	if len(m.mainColumns()) == 1 {
		return m.setError("the main row needs at least one column")
	}
	if err := m.grid.ToggleSubRow(col.Key); err != nil {
		return m.setError(err.Error())
	}
	m.colCursor = clamp(m.colCursor, 0, len(m.mainColumns())-1)
	m.ensureColVisible()
	return m.setStatus(col.Label + " moved to sub-row")
}

func (m *gridModel) fromSubRow() tea.Cmd {
	fields := m.grid.ResolvedSubRowColumns()
	if len(fields) == 0 {
		return nil
	}
	col := fields[clamp(m.subCursor, 0, len(fields)-1)]
	if err := m.grid.ToggleSubRow(col.Key); err != nil {
		return m.setError(err.Error())
	}
	m.subCursor = clamp(m.subCursor, 0, max(len(fields)-2, 0))
	m.ensureRowVisible()
	return m.setStatus(col.Label + " moved to main row")
}

func (m *gridModel) moveSubCursor(delta int) {
	n := len(m.grid.ResolvedSubRowColumns())
	if n == 0 {
		return
	}
	m.subCursor = clamp(m.subCursor+delta, 0, n-1)
}

func (m *gridModel) moveSubField(delta int) {
	fields := m.grid.ResolvedSubRowColumns()
	if len(fields) == 0 {
		return
	}
	focus := fields[clamp(m.subCursor, 0, len(fields)-1)].Key
	order := m.grid.MoveSubRowColumn(focus, delta)
	for i, k := range order {
		if k == focus {
			m.subCursor = i
		}
	}
}

func (m gridModel) subFocusKey() string {
	fields := m.grid.ResolvedSubRowColumns()
	if len(fields) == 0 {
		return ""
	}
	return fields[clamp(m.subCursor, 0, len(fields)-1)].Key
}

// ═══════════════════════════════════════════════════════════════════════════
// Resize
// ═══════════════════════════════════════════════════════════════════════════

// beginKeyboardResize starts a drag on the current column with a virtual
// pointer at 0 and moves it by delta. Further < and > move it again;
// enter commits, esc cancels.
func (m gridModel) beginKeyboardResize(delta int) (tea.Model, tea.Cmd) {
	col, ok := m.currentColumn()
	if !ok {
		return m, nil
	}
	if err := m.grid.BeginResize(col.Key, 0); err != nil {
		return m, m.setError(err.Error())
	}
	m.mode = modeResize
	m.resizeX = delta
	m.grid.DragResize(m.resizeX)
	return m, nil
}

func (m gridModel) updateResize(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.grid.CancelResize()
		m.mode = modeNormal
	case msg.Type == tea.KeyEnter:
		m.mode = modeNormal
		width, err := m.grid.EndResize(m.resizeX)
		if err != nil {
			return m, m.setError(err.Error())
		}
		m.ensureColVisible()
		return m, m.setStatus(fmt.Sprintf("width %d", width))
	case key.Matches(msg, tableKeys.Narrow), key.Matches(msg, tableKeys.Left):
		m.resizeX -= m.opts.ResizeStep
		m.grid.DragResize(m.resizeX)
	case key.Matches(msg, tableKeys.Widen), key.Matches(msg, tableKeys.Right):
		m.resizeX += m.opts.ResizeStep
		m.grid.DragResize(m.resizeX)
	}
	return m, nil
}

// updateMouse drags a column edge in the header row.
func (m gridModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.Y != headerLineY || m.mode != modeNormal {
			return m, nil
		}
		col, ok := m.columnEdgeAt(msg.X)
		if !ok {
			return m, nil
		}
		if err := m.grid.BeginResize(col.Key, msg.X); err != nil {
			return m, m.setError(err.Error())
		}
		m.dragMouse = true

	case tea.MouseActionMotion:
		if m.dragMouse {
			m.grid.DragResize(msg.X)
		}

	case tea.MouseActionRelease:
		if !m.dragMouse {
			return m, nil
		}
		m.dragMouse = false
		if _, err := m.grid.EndResize(msg.X); err != nil {
			return m, m.setError(err.Error())
		}
	}
	return m, nil
}

// columnEdgeAt finds the main column whose right edge is at screen x.
func (m gridModel) columnEdgeAt(x int) (grid.Column, bool) {
	for i, col := range m.mainColumns() {
		edge := gutterWidth + m.colEndX(i) - m.scrollX
		if x >= edge-1 && x <= edge+1 {
			return col, true
		}
	}
	return grid.Column{}, false
}

// ═══════════════════════════════════════════════════════════════════════════
// Layout persistence
// ═══════════════════════════════════════════════════════════════════════════

func (m gridModel) saveLayout() error {
	if m.opts.Layouts == nil || m.opts.LayoutName == "" {
		return nil
	}
	if err := m.opts.Layouts.Save(m.opts.LayoutName, m.grid.Layout()); err != nil {
		m.opts.Logger.Warn("layout not saved", "name", m.opts.LayoutName, "err", err)
		return err
	}
	m.opts.Logger.Debug("layout saved", "name", m.opts.LayoutName)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Status Message (flash notification)
// ═══════════════════════════════════════════════════════════════════════════

const statusDuration = 2 * time.Second

// setStatus sets a temporary status message that auto-clears.
func (m *gridModel) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = false
	m.statusUntil = time.Now().Add(statusDuration)
	return tea.Tick(statusDuration, func(t time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m *gridModel) setError(msg string) tea.Cmd {
	cmd := m.setStatus(msg)
	m.statusErr = true
	return cmd
}

// ═══════════════════════════════════════════════════════════════════════════
// Clipboard (yank)
// ═══════════════════════════════════════════════════════════════════════════

// yankCell copies the current cell value to the system clipboard.
func (m *gridModel) yankCell() tea.Cmd {
	vr, ok := m.currentRow()
	col, colOK := m.currentColumn()
	if !ok || !colOK {
		return nil
	}
	val := grid.FormatValue(vr.Row[col.Key])
	if err := clipboard.WriteAll(val); err != nil {
		return m.setError(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus("Copied: " + Truncate(val, 40))
}

// yankRows copies the selected rows, or the cursor row when nothing is
// selected, as tab-separated lines.
func (m *gridModel) yankRows() tea.Cmd {
	cols := m.grid.Columns()
	var rows []grid.Row
	for _, vr := range m.visible {
		if vr.Selected {
			rows = append(rows, vr.Row)
		}
	}
	if len(rows) == 0 {
		vr, ok := m.currentRow()
		if !ok {
			return nil
		}
		rows = []grid.Row{vr.Row}
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = grid.FormatValue(row[c.Key])
		}
		lines[i] = strings.Join(cells, "\t")
	}
	if err := clipboard.WriteAll(strings.Join(lines, "\n")); err != nil {
		return m.setError(fmt.Sprintf("clipboard error: %s", err))
	}
	if len(rows) == 1 {
		return m.setStatus(fmt.Sprintf("Copied row (%d columns)", len(cols)))
	}
	return m.setStatus(fmt.Sprintf("Copied %d rows", len(rows)))
}

// ═══════════════════════════════════════════════════════════════════════════
// Row / Column Helpers
// ═══════════════════════════════════════════════════════════════════════════

// refresh re-derives the visible rows and keeps the cursors in range.
func (m *gridModel) refresh() {
	m.visible = m.grid.Visible()
	m.cursor = clamp(m.cursor, 0, max(len(m.visible)-1, 0))
	m.colCursor = clamp(m.colCursor, 0, max(len(m.mainColumns())-1, 0))
}

func (m gridModel) mainColumns() []grid.Column {
	var out []grid.Column
	for _, c := range m.grid.Columns() {
		if !c.SubRow {
			out = append(out, c)
		}
	}
	return out
}

func (m gridModel) currentColumn() (grid.Column, bool) {
	cols := m.mainColumns()
	if m.colCursor < 0 || m.colCursor >= len(cols) {
		return grid.Column{}, false
	}
	return cols[m.colCursor], true
}

func (m gridModel) currentRow() (grid.VisibleRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return grid.VisibleRow{}, false
	}
	return m.visible[m.cursor], true
}

// colDisplayWidth is the drawn width: the live drag width while resizing,
// the committed width otherwise, clamped to the minimum for drawing only.
func (m gridModel) colDisplayWidth(c grid.Column) int {
	if c.Hidden {
		return hiddenColWidth
	}
	w := c.Width
	if key, live, ok := m.grid.Resizing(); ok && key == c.Key {
		w = live
	}
	if w == 0 {
		w = m.opts.DefaultWidth
	}
	if w < m.opts.MinWidth {
		w = m.opts.MinWidth
	}
	return w
}

func (m gridModel) colStartX(idx int) int {
	x := 0
	cols := m.mainColumns()
	for i := 0; i < idx && i < len(cols); i++ {
		x += m.colDisplayWidth(cols[i]) + 2
	}
	return x
}

func (m gridModel) colEndX(idx int) int {
	cols := m.mainColumns()
	if idx >= len(cols) {
		return m.colStartX(idx)
	}
	return m.colStartX(idx) + m.colDisplayWidth(cols[idx])
}

func (m gridModel) totalWidth() int {
	return m.colStartX(len(m.mainColumns()))
}

func (m gridModel) viewportWidth() int {
	return max(m.width-gutterWidth-1, 1)
}

func (m gridModel) visibleLineCount() int {
	return max(m.height-chromeLines, 1)
}

// rowLines is the number of screen lines row i of the view takes.
func (m gridModel) rowLines(i int) int {
	vr := m.visible[i]
	if !vr.Expanded {
		return 1
	}
	return 1 + strings.Count(m.renderSubRow(vr), "\n") + 1
}

func (m *gridModel) ensureRowVisible() {
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
		return
	}
	avail := m.visibleLineCount()
	for m.scrollY < m.cursor {
		used := 0
		for i := m.scrollY; i <= m.cursor && i < len(m.visible); i++ {
			used += m.rowLines(i)
		}
		if used <= avail {
			break
		}
		m.scrollY++
	}
}

func (m *gridModel) ensureColVisible() {
	start := m.colStartX(m.colCursor)
	end := m.colEndX(m.colCursor)
	vw := m.viewportWidth()

	if start < m.scrollX {
		m.scrollX = start
	} else if end > m.scrollX+vw {
		if end-start <= vw {
			m.scrollX = end - vw
		} else {
			m.scrollX = start
		}
	}
	m.scrollX = clamp(m.scrollX, 0, max(m.totalWidth()-vw, 0))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
