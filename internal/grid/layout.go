package grid

// ColumnLayout is the transient, user-changed part of one column.
type ColumnLayout struct {
	Key    string `yaml:"key" msgpack:"k"`
	Width  int    `yaml:"width,omitempty" msgpack:"w,omitempty"`
	SubRow bool   `yaml:"sub_row,omitempty" msgpack:"s,omitempty"`
	Hidden bool   `yaml:"hidden,omitempty" msgpack:"h,omitempty"`
}

// Layout captures what a host may want to restore on the next mount.
// The engine never persists it itself.
type Layout struct {
	Columns     []ColumnLayout `yaml:"columns" msgpack:"c"`
	SubRowOrder []string       `yaml:"sub_row_order,omitempty" msgpack:"o,omitempty"`
	SortColumn  string         `yaml:"sort_column,omitempty" msgpack:"sc,omitempty"`
	SortDesc    bool           `yaml:"sort_desc,omitempty" msgpack:"sd,omitempty"`
}

// Layout snapshots the current column layout.
func (g *Grid) Layout() Layout {
	var l Layout
	for _, c := range g.columns.Columns() {
		l.Columns = append(l.Columns, ColumnLayout{
			Key:    c.Key,
			Width:  c.Width,
			SubRow: c.SubRow,
			Hidden: c.Hidden,
		})
	}
	l.SubRowOrder = g.subRows.Keys()
	if spec, ok := g.sort.Current(); ok {
		l.SortColumn = spec.Column
		l.SortDesc = spec.Direction == Descending
	}
	return l
}

// RestoreLayout applies a snapshot. Keys that no longer name a column
// are skipped; the force-update counter moves once.
func (g *Grid) RestoreLayout(l Layout) {
	for _, c := range l.Columns {
		if !g.columns.Has(c.Key) {
			continue
		}
		g.columns.setFlags(c.Key, c.SubRow, c.Hidden)
		if c.Width != 0 {
			g.columns.SetWidth(c.Key, c.Width)
		}
	}
	if l.SubRowOrder != nil {
		g.subRows.Replace(l.SubRowOrder)
	} else {
		g.subRows.Replace(g.columns.SubRowKeys())
	}

	g.sort.Clear()
	if col, ok := g.columns.Get(l.SortColumn); ok && col.Sortable {
		dir := Ascending
		if l.SortDesc {
			dir = Descending
		}
		g.sort.Set(SortSpec{Column: l.SortColumn, Direction: dir})
	}
	g.columns.bump()
}
