package grid

import (
	"fmt"
	"time"

	"github.com/freightdesk/gridkit/internal/util"
)

// Row is an opaque host record keyed by column key.
type Row map[string]any

// RowKey identifies a row across reloads and reorders.
type RowKey string

// RowStore holds the current row array. The array is only ever replaced
// wholesale; single fields change through Merge.
type RowStore struct {
	rows      []Row
	keys      []RowKey
	keyColumn string
}

// NewRowStore returns an empty store. When keyColumn is set, a row's key
// is the formatted value of that column; otherwise each loaded row gets a
// fresh ULID.
func NewRowStore(keyColumn string) *RowStore {
	return &RowStore{keyColumn: keyColumn}
}

// Set replaces the row array and returns the new key set.
func (s *RowStore) Set(rows []Row) map[RowKey]struct{} {
	s.rows = make([]Row, len(rows))
	copy(s.rows, rows)
	s.keys = make([]RowKey, len(rows))

	live := make(map[RowKey]struct{}, len(rows))
	for i, row := range s.rows {
		key := s.keyFor(row)
		if _, dup := live[key]; dup {
			// Duplicate host keys would alias selection state.
			key = RowKey(util.NewULID())
		}
		s.keys[i] = key
		live[key] = struct{}{}
	}
	return live
}

func (s *RowStore) keyFor(row Row) RowKey {
	if s.keyColumn != "" {
		if v, ok := row[s.keyColumn]; ok && v != nil {
			return RowKey(FormatValue(v))
		}
	}
	return RowKey(util.NewULID())
}

// Len returns the number of rows.
func (s *RowStore) Len() int {
	return len(s.rows)
}

// Rows returns the current row array. Callers must not mutate it.
func (s *RowStore) Rows() []Row {
	return s.rows
}

// At returns the row at position i.
func (s *RowStore) At(i int) (Row, bool) {
	if i < 0 || i >= len(s.rows) {
		return nil, false
	}
	return s.rows[i], true
}

// KeyAt returns the key of the row at position i.
func (s *RowStore) KeyAt(i int) (RowKey, bool) {
	if i < 0 || i >= len(s.keys) {
		return "", false
	}
	return s.keys[i], true
}

// IndexOf returns the current position of key, or -1.
func (s *RowStore) IndexOf(key RowKey) int {
	for i, k := range s.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Merge writes one field into row i. The row map is copied so other
// fields and any earlier reference to the row stay untouched.
func (s *RowStore) Merge(i int, column string, value any) error {
	if i < 0 || i >= len(s.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	next := make(Row, len(s.rows[i])+1)
	for k, v := range s.rows[i] {
		next[k] = v
	}
	next[column] = value
	s.rows[i] = next
	return nil
}

// FormatValue renders a cell value as text the way filters and the
// default comparator see it.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return util.ToValidUTF8(string(val))
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
