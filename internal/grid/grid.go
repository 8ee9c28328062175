package grid

import (
	"context"
	"fmt"
	"log/slog"
)

// Grid composes the engines behind one table. Every method except
// ApplyFilter completes synchronously and is meant to be driven from a
// single goroutine (the host's event loop). ApplyFilter may block on a
// server round trip and is safe to run from a separate goroutine.
type Grid struct {
	columns   *ColumnRegistry
	rows      *RowStore
	sort      SortCycle
	filters   *FilterCoordinator
	selection SelectionTracker
	expansion ExpansionTracker
	edit      *EditSession
	editKey   RowKey
	subRows   *SubRowColumnOrder
	resize    ResizeSession

	serverOp ServerFilterFunc
	logger   *slog.Logger
}

// Option configures a Grid.
type Option func(*options)

type options struct {
	keyColumn string
	serverOp  ServerFilterFunc
	policy    FilterPolicy
	logger    *slog.Logger
}

// WithKeyColumn names the column whose value identifies a row across
// reloads. Without it every reload gets fresh keys.
func WithKeyColumn(key string) Option {
	return func(o *options) { o.keyColumn = key }
}

// WithServerFilter sets the operation used for server-mode columns.
func WithServerFilter(op ServerFilterFunc) Option {
	return func(o *options) { o.serverOp = op }
}

// WithFilterPolicy picks how overlapping server requests resolve.
func WithFilterPolicy(p FilterPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// New mounts a grid over cols.
func New(cols []Column, opts ...Option) *Grid {
	o := options{policy: LatestIssuedWins}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = discardLogger()
	}

	reg := NewColumnRegistry(cols)
	rows := NewRowStore(o.keyColumn)
	return &Grid{
		columns:  reg,
		rows:     rows,
		filters:  NewFilterCoordinator(o.policy, o.logger),
		edit:     NewEditSession(rows),
		subRows:  NewSubRowColumnOrder(reg),
		serverOp: o.serverOp,
		logger:   o.logger,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Rows
// ═══════════════════════════════════════════════════════════════════════════

// SetRows replaces the row array. Selection and expansion entries whose
// row is gone are dropped; an open edit follows its row to the new
// position or is discarded when the row disappeared.
func (g *Grid) SetRows(rows []Row) {
	live := g.rows.Set(rows)
	droppedSel := g.selection.Retain(live)
	droppedExp := g.expansion.Retain(live)

	if st := g.edit.State(); st.Editing() {
		if idx := g.rows.IndexOf(g.editKey); idx >= 0 {
			g.edit.Start(EditTarget{Row: idx, Column: st.Target.Column}, st.Draft)
		} else {
			g.edit.Reset()
			g.editKey = ""
			g.logger.Debug("edit discarded on reload", "column", st.Target.Column)
		}
	}
	g.logger.Debug("rows replaced", "count", len(rows), "selection_dropped", droppedSel, "expansion_dropped", droppedExp)
}

// Rows returns the current row array.
func (g *Grid) Rows() []Row {
	return g.rows.Rows()
}

// Row returns the row at position i.
func (g *Grid) Row(i int) (Row, bool) {
	return g.rows.At(i)
}

// KeyAt returns the key of the row at position i.
func (g *Grid) KeyAt(i int) (RowKey, bool) {
	return g.rows.KeyAt(i)
}

// Visible derives the rows to display: local filters applied, then the
// active sort.
func (g *Grid) Visible() []VisibleRow {
	filters := g.filters.Filters()
	var out []VisibleRow
	for i, row := range g.rows.Rows() {
		if !matchLocal(row, filters) {
			continue
		}
		key, _ := g.rows.KeyAt(i)
		out = append(out, VisibleRow{
			Index:    i,
			Key:      key,
			Row:      row,
			Selected: g.selection.Has(key),
			Expanded: g.expansion.Has(key),
		})
	}
	if spec, ok := g.sort.Current(); ok {
		col, _ := g.columns.Get(spec.Column)
		sortVisible(out, spec, col.Type)
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Columns
// ═══════════════════════════════════════════════════════════════════════════

// Columns returns the column descriptors in display order.
func (g *Grid) Columns() []Column {
	return g.columns.Columns()
}

// Column returns one descriptor.
func (g *Grid) Column(key string) (Column, bool) {
	return g.columns.Get(key)
}

// Version is the force-update counter of the column set.
func (g *Grid) Version() uint64 {
	return g.columns.Version()
}

// ToggleSubRow flips a column between main-row and sub-row rendering.
// Selection, expansion and any open edit are left alone.
func (g *Grid) ToggleSubRow(key string) error {
	if !g.columns.ToggleSubRow(key) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	return nil
}

// ToggleHidden flips a column's visibility.
func (g *Grid) ToggleHidden(key string) error {
	if !g.columns.ToggleHidden(key) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	return nil
}

// ReorderSubRowColumns replaces the sub-row order wholesale, unvalidated.
func (g *Grid) ReorderSubRowColumns(newOrder []string) {
	g.subRows.Replace(newOrder)
}

// MoveSubRowColumn shifts key within the resolved sub-row order.
func (g *Grid) MoveSubRowColumn(key string, delta int) []string {
	return g.subRows.Move(g.columns, key, delta)
}

// SubRowOrder returns the stored sub-row order as last set.
func (g *Grid) SubRowOrder() []string {
	return g.subRows.Keys()
}

// ResolvedSubRowColumns returns the sub-row columns a renderer should
// draw, each flagged column exactly once.
func (g *Grid) ResolvedSubRowColumns() []Column {
	return g.subRows.Resolve(g.columns)
}

// ═══════════════════════════════════════════════════════════════════════════
// Sort
// ═══════════════════════════════════════════════════════════════════════════

// ToggleSort advances the sort cycle for key. Columns that are not
// sortable leave the sort unchanged.
func (g *Grid) ToggleSort(key string) (SortSpec, bool, error) {
	col, ok := g.columns.Get(key)
	if !ok {
		return SortSpec{}, false, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if !col.Sortable {
		spec, active := g.sort.Current()
		return spec, active, nil
	}
	spec, active := g.sort.Toggle(key)
	return spec, active, nil
}

// Sort returns the active sort.
func (g *Grid) Sort() (SortSpec, bool) {
	return g.sort.Current()
}

// ═══════════════════════════════════════════════════════════════════════════
// Filters
// ═══════════════════════════════════════════════════════════════════════════

// ApplyFilter sets or removes (empty value) the filter for spec.Column.
// Local columns commit immediately; server columns commit only after
// the configured server operation succeeds.
func (g *Grid) ApplyFilter(ctx context.Context, spec FilterSpec) error {
	return g.ApplyFilterWith(ctx, spec, g.serverOp)
}

// ApplyFilterWith is ApplyFilter with a per-call server operation.
func (g *Grid) ApplyFilterWith(ctx context.Context, spec FilterSpec, op ServerFilterFunc) error {
	run, err := g.FilterRequest(spec, op)
	if err != nil {
		return err
	}
	return run(ctx)
}

// FilterRequest resolves spec against the columns now and returns the
// deferred half of the apply. The returned func touches only the filter
// coordinator, so a host may run it on another goroutine while it keeps
// driving the rest of the grid.
func (g *Grid) FilterRequest(spec FilterSpec, op ServerFilterFunc) (func(context.Context) error, error) {
	col, ok := g.columns.Get(spec.Column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, spec.Column)
	}
	return func(ctx context.Context) error {
		return g.filters.Apply(ctx, spec, col, op)
	}, nil
}

// ClearFilter drops a column's filter without a server round trip.
func (g *Grid) ClearFilter(key string) {
	g.filters.Clear(key)
}

// Filters returns the committed filter list.
func (g *Grid) Filters() []FilterSpec {
	return g.filters.Filters()
}

// FilterValue returns the committed value for key.
func (g *Grid) FilterValue(key string) (string, bool) {
	return g.filters.Value(key)
}

// FilterPending reports an outstanding server request for key.
func (g *Grid) FilterPending(key string) bool {
	return g.filters.Pending(key)
}

// ═══════════════════════════════════════════════════════════════════════════
// Selection / expansion
// ═══════════════════════════════════════════════════════════════════════════

// ToggleSelected flips selection of the row at position i. Out-of-range
// positions are ignored.
func (g *Grid) ToggleSelected(i int) bool {
	key, ok := g.rows.KeyAt(i)
	if !ok {
		return false
	}
	return g.selection.Toggle(key)
}

// ToggleExpanded flips expansion of the row at position i.
func (g *Grid) ToggleExpanded(i int) bool {
	key, ok := g.rows.KeyAt(i)
	if !ok {
		return false
	}
	return g.expansion.Toggle(key)
}

// IsSelected reports whether the row at position i is selected.
func (g *Grid) IsSelected(i int) bool {
	key, ok := g.rows.KeyAt(i)
	return ok && g.selection.Has(key)
}

// IsExpanded reports whether the row at position i is expanded.
func (g *Grid) IsExpanded(i int) bool {
	key, ok := g.rows.KeyAt(i)
	return ok && g.expansion.Has(key)
}

// Selected returns the positions of the selected rows in array order.
func (g *Grid) Selected() []int {
	var out []int
	for i := 0; i < g.rows.Len(); i++ {
		if key, _ := g.rows.KeyAt(i); g.selection.Has(key) {
			out = append(out, i)
		}
	}
	return out
}

// ClearSelection empties the selection.
func (g *Grid) ClearSelection() {
	g.selection.Clear()
}

// ClearExpansion collapses every row.
func (g *Grid) ClearExpansion() {
	g.expansion.Clear()
}

// ═══════════════════════════════════════════════════════════════════════════
// Editing
// ═══════════════════════════════════════════════════════════════════════════

// EditController is the slice of the grid handed to sub-row renderers
// so they share the one edit slot instead of keeping their own.
type EditController interface {
	StartEdit(row int, column string) error
	CommitEdit(row int, column string, value any) error
	CancelEdit()
	EditState() EditState
}

// SubRowRenderer draws the nested content of an expanded row.
type SubRowRenderer interface {
	RenderSubRow(row Row, index int, columns []Column, edits EditController) string
}

var _ EditController = (*Grid)(nil)

// StartEdit opens the cell at (row, column), abandoning any other open
// edit without writing it. The draft starts at the cell's current value.
func (g *Grid) StartEdit(row int, column string) error {
	r, ok := g.rows.At(row)
	if !ok {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if !g.columns.Has(column) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	prev := g.edit.State()
	if g.edit.Start(EditTarget{Row: row, Column: column}, FormatValue(r[column])) {
		g.logger.Debug("edit discarded", "row", prev.Target.Row, "column", prev.Target.Column)
	}
	g.editKey, _ = g.rows.KeyAt(row)
	return nil
}

// SetDraft records the in-progress value of the open edit.
func (g *Grid) SetDraft(value string) {
	g.edit.SetDraft(value)
}

// CommitEdit writes value into (row, column) and closes the edit. It is
// a no-op while idle. Unknown columns are rejected before any write.
func (g *Grid) CommitEdit(row int, column string, value any) error {
	if !g.columns.Has(column) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	if _, err := g.edit.Commit(EditTarget{Row: row, Column: column}, value); err != nil {
		return fmt.Errorf("commit %s[%d]: %w", column, row, err)
	}
	if !g.edit.State().Editing() {
		g.editKey = ""
	}
	return nil
}

// CommitDraft commits the open edit's draft to its own target.
func (g *Grid) CommitDraft() error {
	st := g.edit.State()
	if !st.Editing() {
		return nil
	}
	return g.CommitEdit(st.Target.Row, st.Target.Column, st.Draft)
}

// CancelEdit closes the open edit without touching data.
func (g *Grid) CancelEdit() {
	g.edit.Cancel()
	g.editKey = ""
}

// EditState returns the edit machine's state.
func (g *Grid) EditState() EditState {
	return g.edit.State()
}

// ═══════════════════════════════════════════════════════════════════════════
// Resize
// ═══════════════════════════════════════════════════════════════════════════

// BeginResize starts a drag on key from pointer position x, using the
// column's committed width as the baseline.
func (g *Grid) BeginResize(key string, x int) error {
	col, ok := g.columns.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	g.resize.Begin(key, x, col.Width)
	return nil
}

// DragResize returns the live width for pointer position x.
func (g *Grid) DragResize(x int) (int, bool) {
	return g.resize.Drag(x)
}

// EndResize commits the width for pointer position x and ends the drag.
// A column removed mid-drag makes the session vanish without a commit.
func (g *Grid) EndResize(x int) (int, error) {
	key, width, err := g.resize.End(x)
	if err != nil {
		return 0, err
	}
	if !g.columns.SetWidth(key, width) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	return width, nil
}

// CancelResize ends the drag without committing.
func (g *Grid) CancelResize() {
	g.resize.Cancel()
}

// Resizing reports the column being dragged and its live width.
func (g *Grid) Resizing() (string, int, bool) {
	key, ok := g.resize.Active()
	return key, g.resize.Width(), ok
}
