package table

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestExportRows_SkipsHiddenAndFollowsView(t *testing.T) {
	g := newFixtureGrid()
	_ = g.ToggleHidden("departedAt")
	if _, _, err := g.ToggleSort("id"); err != nil {
		t.Fatal(err)
	}

	headers, rows := ExportRows(g)
	want := []string{"id", "status", "departurePoint", "arrivalPoint"}
	if !reflect.DeepEqual(headers, want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	if len(rows) != 3 || rows[0][0] != int64(1) {
		t.Errorf("rows = %v", rows)
	}
}

func TestPrintJSONResults(t *testing.T) {
	var buf bytes.Buffer
	err := PrintJSONResults(&buf, []string{"id", "status"}, [][]any{{int64(1), "Closed"}, {int64(2), nil}})
	if err != nil {
		t.Fatal(err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if len(got) != 2 || got[0]["status"] != "Closed" || got[1]["status"] != nil {
		t.Errorf("decoded = %v", got)
	}
}

func TestPrintRaw(t *testing.T) {
	var buf bytes.Buffer
	PrintRaw(&buf, [][]any{{int64(1), "a\tb"}, {int64(2), nil}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "1\t") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestPrintPlainTable(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintPlainTable(&buf, []string{"id", "status"}, [][]any{{int64(3), "Active"}, {int64(1), nil}}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Active", "NULL", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPadOrTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  int
	}{
		{"abc", 6, 6},
		{"abcdefghij", 5, 5},
		{"", 2, 2},
	}
	for _, tt := range tests {
		got := PadOrTruncate(tt.in, tt.width)
		if w := len([]rune(got)); w != tt.want {
			t.Errorf("PadOrTruncate(%q, %d) = %q (width %d)", tt.in, tt.width, got, w)
		}
	}
}
