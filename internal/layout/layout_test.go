package layout

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/util"
)

func sampleLayout() grid.Layout {
	return grid.Layout{
		Columns: []grid.ColumnLayout{
			{Key: "id", Width: 8},
			{Key: "arrivalPoint", SubRow: true},
			{Key: "notes", Hidden: true},
		},
		SubRowOrder: []string{"arrivalPoint", "departedAt"},
		SortColumn:  "id",
		SortDesc:    true,
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "layouts"))
	want := sampleLayout()

	if err := s.Save("dispatch", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("dispatch")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"dispatch"}) {
		t.Errorf("List = %v", names)
	}
}

func TestStore_YAMLIsReadable(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save("a", sampleLayout()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(s.Path("a"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"columns:", "sub_row_order:", "sort_desc: true"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("yaml missing %q:\n%s", want, data)
		}
	}
}

func TestStore_Missing(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Load("nope"); !errors.Is(err, util.ErrLayoutNotFound) {
		t.Errorf("Load err = %v, want ErrLayoutNotFound", err)
	}
	if err := s.Delete("nope"); !errors.Is(err, util.ErrLayoutNotFound) {
		t.Errorf("Delete err = %v, want ErrLayoutNotFound", err)
	}
	names, err := NewStore(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || names != nil {
		t.Errorf("List on absent dir = %v, %v", names, err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Save("x", sampleLayout()); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load("x"); !errors.Is(err, util.ErrLayoutNotFound) {
		t.Errorf("Load after delete err = %v", err)
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"dispatch", true},
		{"night-shift_2", true},
		{"", false},
		{"../etc", false},
		{".hidden", false},
		{"a/b", false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestToken_RoundTrip(t *testing.T) {
	want := sampleLayout()
	tok, err := EncodeToken(want)
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}
	got, err := DecodeToken(tok)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodeToken = %+v, want %+v", got, want)
	}
}

func TestToken_Rejects(t *testing.T) {
	tok, err := EncodeToken(sampleLayout())
	if err != nil {
		t.Fatal(err)
	}
	corrupt := []byte(tok)
	if corrupt[0] == 'A' {
		corrupt[0] = 'B'
	} else {
		corrupt[0] = 'A'
	}
	bad := []string{
		"",
		"no-checksum",
		"!!!.AAAA",
		string(corrupt),
	}
	for _, b := range bad {
		if _, err := DecodeToken(b); !errors.Is(err, util.ErrBadToken) {
			t.Errorf("DecodeToken(%q) err = %v, want ErrBadToken", b, err)
		}
	}
}

func TestToken_RestoresIntoGrid(t *testing.T) {
	cols := []grid.Column{
		{Key: "id", Sortable: true, Width: 4},
		{Key: "arrivalPoint"},
		{Key: "notes"},
	}
	src := grid.New(cols)
	if err := src.ToggleSubRow("arrivalPoint"); err != nil {
		t.Fatal(err)
	}
	src.ToggleSort("id")

	tok, err := EncodeToken(src.Layout())
	if err != nil {
		t.Fatal(err)
	}
	l, err := DecodeToken(tok)
	if err != nil {
		t.Fatal(err)
	}

	dst := grid.New(cols)
	dst.RestoreLayout(l)
	if c, _ := dst.Column("arrivalPoint"); !c.SubRow {
		t.Error("sub-row flag not restored")
	}
	if spec, ok := dst.Sort(); !ok || spec.Column != "id" {
		t.Errorf("sort = %+v,%v", spec, ok)
	}
}
