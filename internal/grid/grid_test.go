package grid

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestVisible_LocalFilterAndSort(t *testing.T) {
	g := newSampleGrid()
	ctx := context.Background()

	if err := g.ApplyFilter(ctx, FilterSpec{Column: "status", Value: "active"}); err != nil {
		t.Fatal(err)
	}
	if got, want := visibleIDs(g), []any{3, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}

	g.ToggleSort("id")
	if got, want := visibleIDs(g), []any{2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("asc ids = %v, want %v", got, want)
	}
	g.ToggleSort("id")
	if got, want := visibleIDs(g), []any{3, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("desc ids = %v, want %v", got, want)
	}
}

func TestVisible_DateSortAndIndex(t *testing.T) {
	g := newSampleGrid()
	g.ToggleSort("departedAt")

	rows := g.Visible()
	if got, want := []any{rows[0].Row["id"], rows[1].Row["id"], rows[2].Row["id"]}, []any{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	if rows[0].Index != 1 {
		t.Fatalf("index = %d, want array position 1", rows[0].Index)
	}
}

func TestToggleSort_NotSortableIsIgnored(t *testing.T) {
	g := newSampleGrid()
	if _, active, err := g.ToggleSort("departurePoint"); err != nil || active {
		t.Fatalf("active = %v, err = %v", active, err)
	}
	if _, _, err := g.ToggleSort("nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyFilter_ServerColumnUsesOperation(t *testing.T) {
	var seen []FilterSpec
	g := newSampleGrid(WithServerFilter(func(ctx context.Context, p []FilterSpec) error {
		seen = p
		return nil
	}))

	if err := g.ApplyFilter(context.Background(), FilterSpec{Column: "id", Value: "2"}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0].Mode != FilterServer {
		t.Fatalf("server saw %v", seen)
	}
	// server filters never hide rows locally
	if got := len(g.Visible()); got != 3 {
		t.Fatalf("visible = %d, want 3", got)
	}
}

func TestApplyFilter_UnknownColumn(t *testing.T) {
	g := newSampleGrid()
	if err := g.ApplyFilter(context.Background(), FilterSpec{Column: "x", Value: "1"}); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v", err)
	}
}

func TestSelection_ToggleInvolutionAndRange(t *testing.T) {
	g := newSampleGrid()
	g.ToggleSelected(0)
	g.ToggleSelected(0)
	if g.IsSelected(0) {
		t.Fatal("selected after two toggles")
	}
	if g.ToggleSelected(99) {
		t.Fatal("out of range toggle reported membership")
	}
	if g.ToggleExpanded(-1) {
		t.Fatal("negative index toggled")
	}
}

func TestSelection_FollowsHostKeysAcrossReload(t *testing.T) {
	g := newSampleGrid()
	g.ToggleSelected(0) // id 3
	g.ToggleExpanded(1) // id 1

	rows := sampleRows()
	g.SetRows([]Row{rows[1], rows[0]}) // id 1, id 3; id 2 gone

	if !g.IsSelected(1) || g.IsSelected(0) {
		t.Fatalf("selection = %v, want [1]", g.Selected())
	}
	if !g.IsExpanded(0) {
		t.Fatal("expansion did not follow id 1")
	}
}

func TestSelection_GeneratedKeysResetOnReload(t *testing.T) {
	g := New(sampleColumns())
	g.SetRows(sampleRows())
	g.ToggleSelected(0)

	g.SetRows(sampleRows())
	if len(g.Selected()) != 0 {
		t.Fatalf("selection = %v, want none", g.Selected())
	}
}

func TestVisible_CarriesSelectionFlags(t *testing.T) {
	g := newSampleGrid()
	g.ToggleSelected(2)
	g.ToggleExpanded(2)
	for _, r := range g.Visible() {
		want := r.Index == 2
		if r.Selected != want || r.Expanded != want {
			t.Fatalf("row %d flags = %v/%v", r.Index, r.Selected, r.Expanded)
		}
	}
}

func TestLayout_RoundTrip(t *testing.T) {
	g := newSampleGrid()
	_ = g.ToggleSubRow("departurePoint")
	_ = g.ToggleHidden("status")
	g.MoveSubRowColumn("departurePoint", -2)
	g.ToggleSort("id")
	g.ToggleSort("id")
	_ = g.BeginResize("id", 0)
	_, _ = g.EndResize(4)

	l := g.Layout()

	h := newSampleGrid()
	v0 := h.Version()
	h.RestoreLayout(l)

	if !reflect.DeepEqual(h.Layout(), l) {
		t.Fatalf("layout = %+v\nwant %+v", h.Layout(), l)
	}
	if h.Version() != v0+1 {
		t.Fatalf("version = %d, want %d", h.Version(), v0+1)
	}
	spec, ok := h.Sort()
	if !ok || spec.Direction != Descending {
		t.Fatalf("sort = %+v, %v", spec, ok)
	}
}

func TestRestoreLayout_SkipsUnknownColumns(t *testing.T) {
	g := newSampleGrid()
	g.RestoreLayout(Layout{
		Columns:    []ColumnLayout{{Key: "gone", Width: 50}, {Key: "status", Width: 30}},
		SortColumn: "gone",
	})
	col, _ := g.Column("status")
	if col.Width != 30 {
		t.Fatalf("width = %d", col.Width)
	}
	if _, ok := g.Sort(); ok {
		t.Fatal("sort restored on unknown column")
	}
}
