// Package grid implements the interaction state engine behind every data
// table in the suite: sorting, local/server filtering, row selection and
// expansion, single-cell inline editing, sub-row column layout and column
// resizing.
//
// The engine owns no rendering. A host feeds it column descriptors and a
// row array, forwards user interactions to the matching operation and
// re-renders from the resulting state.
package grid

import (
	"sort"
	"sync/atomic"
)

// FilterMode decides where a column's filter is evaluated.
type FilterMode string

const (
	FilterLocal  FilterMode = "local"
	FilterServer FilterMode = "server"
)

// Column type tags understood by the default comparator.
const (
	TypeString = "string"
	TypeNumber = "number"
	TypeDate   = "date"
	TypeBool   = "bool"
)

// Column describes one column. SubRow, Hidden, Order and Width are the
// only fields that change after mount.
type Column struct {
	Key        string
	Label      string
	Type       string
	Sortable   bool
	Filterable bool
	FilterMode FilterMode
	SubRow     bool
	Hidden     bool
	Order      int
	Width      int
}

// ColumnRegistry is the ordered, mutable set of column descriptors.
type ColumnRegistry struct {
	columns []Column
	index   map[string]int
	version atomic.Uint64
}

// NewColumnRegistry copies cols and orders them by Order, keeping the
// host's order for ties. A column without a filter mode is local.
func NewColumnRegistry(cols []Column) *ColumnRegistry {
	r := &ColumnRegistry{
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	copy(r.columns, cols)
	sort.SliceStable(r.columns, func(i, j int) bool {
		return r.columns[i].Order < r.columns[j].Order
	})
	for i := range r.columns {
		if r.columns[i].FilterMode == "" {
			r.columns[i].FilterMode = FilterLocal
		}
		if r.columns[i].Label == "" {
			r.columns[i].Label = r.columns[i].Key
		}
		r.index[r.columns[i].Key] = i
	}
	return r
}

// Columns returns a copy of the columns in display order.
func (r *ColumnRegistry) Columns() []Column {
	out := make([]Column, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r *ColumnRegistry) Len() int {
	return len(r.columns)
}

// Get returns the column with the given key.
func (r *ColumnRegistry) Get(key string) (Column, bool) {
	i, ok := r.index[key]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

// Has reports whether key names a registered column.
func (r *ColumnRegistry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Version is the force-update counter. It only ever increases, and it
// changes on structural edits that keep the column slice identity intact
// so memoizing presentation layers know to rebuild.
func (r *ColumnRegistry) Version() uint64 {
	return r.version.Load()
}

// ToggleSubRow flips one column's SubRow flag and bumps Version.
// Unknown keys are ignored.
func (r *ColumnRegistry) ToggleSubRow(key string) bool {
	i, ok := r.index[key]
	if !ok {
		return false
	}
	r.columns[i].SubRow = !r.columns[i].SubRow
	r.version.Add(1)
	return true
}

// ToggleHidden flips one column's Hidden flag and bumps Version.
func (r *ColumnRegistry) ToggleHidden(key string) bool {
	i, ok := r.index[key]
	if !ok {
		return false
	}
	r.columns[i].Hidden = !r.columns[i].Hidden
	r.version.Add(1)
	return true
}

// SetWidth stores a committed width. No clamping happens here; minimum
// widths are a presentation concern.
func (r *ColumnRegistry) SetWidth(key string, width int) bool {
	i, ok := r.index[key]
	if !ok {
		return false
	}
	r.columns[i].Width = width
	return true
}

// Widths returns the per-column width map.
func (r *ColumnRegistry) Widths() map[string]int {
	out := make(map[string]int, len(r.columns))
	for _, c := range r.columns {
		out[c.Key] = c.Width
	}
	return out
}

// SubRowKeys returns the keys currently flagged SubRow, in display order.
func (r *ColumnRegistry) SubRowKeys() []string {
	var keys []string
	for _, c := range r.columns {
		if c.SubRow {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// setFlags restores SubRow/Hidden flags without bumping Version per
// column; callers bump once.
func (r *ColumnRegistry) setFlags(key string, subRow, hidden bool) {
	if i, ok := r.index[key]; ok {
		r.columns[i].SubRow = subRow
		r.columns[i].Hidden = hidden
	}
}

func (r *ColumnRegistry) bump() {
	r.version.Add(1)
}
