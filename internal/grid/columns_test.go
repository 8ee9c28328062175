package grid

import "testing"

func TestNewColumnRegistry_OrdersByOrder(t *testing.T) {
	reg := NewColumnRegistry([]Column{
		{Key: "b", Order: 2},
		{Key: "a", Order: 1},
		{Key: "c", Order: 2},
	})

	var keys []string
	for _, c := range reg.Columns() {
		keys = append(keys, c.Key)
	}
	if got, want := len(keys), 3; got != want {
		t.Fatalf("len = %d, want %d", got, want)
	}
	if keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("order = %v, want [a b c]", keys)
	}

	c, _ := reg.Get("a")
	if c.FilterMode != FilterLocal {
		t.Fatalf("default filter mode = %q, want local", c.FilterMode)
	}
	if c.Label != "a" {
		t.Fatalf("default label = %q, want key", c.Label)
	}
}

func TestToggleSubRow_TwiceRestoresFlagAndCountsTwo(t *testing.T) {
	reg := NewColumnRegistry(sampleColumns())
	before, _ := reg.Get("departurePoint")
	v0 := reg.Version()

	reg.ToggleSubRow("departurePoint")
	mid, _ := reg.Get("departurePoint")
	if mid.SubRow == before.SubRow {
		t.Fatal("first toggle did not flip the flag")
	}
	reg.ToggleSubRow("departurePoint")

	after, _ := reg.Get("departurePoint")
	if after.SubRow != before.SubRow {
		t.Fatalf("sub_row = %v, want %v", after.SubRow, before.SubRow)
	}
	if got := reg.Version() - v0; got != 2 {
		t.Fatalf("version delta = %d, want 2", got)
	}
}

func TestToggleSubRow_LeavesOtherColumns(t *testing.T) {
	reg := NewColumnRegistry(sampleColumns())
	before := reg.Columns()

	reg.ToggleSubRow("status")

	for i, c := range reg.Columns() {
		if c.Key == "status" {
			continue
		}
		if c != before[i] {
			t.Fatalf("column %s changed: %+v -> %+v", c.Key, before[i], c)
		}
	}
}

func TestToggleSubRow_UnknownKey(t *testing.T) {
	reg := NewColumnRegistry(sampleColumns())
	if reg.ToggleSubRow("nope") {
		t.Fatal("expected false for unknown key")
	}
	if reg.Version() != 0 {
		t.Fatalf("version moved on unknown key: %d", reg.Version())
	}
}

func TestSetWidth_NoClamp(t *testing.T) {
	reg := NewColumnRegistry(sampleColumns())
	reg.SetWidth("status", -4)
	if got := reg.Widths()["status"]; got != -4 {
		t.Fatalf("width = %d, want -4", got)
	}
}
