package grid

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// VisibleRow is one row of the derived view together with its position
// in the current row array and its key.
type VisibleRow struct {
	Index    int
	Key      RowKey
	Row      Row
	Selected bool
	Expanded bool
}

// dateLayouts are tried in order when comparing date columns.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// compareValues orders a and b by the column type tag. Ascending order
// puts empty values first, then values that parse as the column type,
// then values that do not, which compare as case-folded strings.
func compareValues(typ string, a, b any) int {
	as, bs := FormatValue(a), FormatValue(b)
	if as == "" || bs == "" {
		return compareEmpty(as, bs)
	}
	switch typ {
	case TypeNumber:
		af, aerr := toFloat(a, as)
		bf, berr := toFloat(b, bs)
		if aerr == nil && berr == nil {
			return compareOrdered(af, bf)
		}
		if c := compareParsed(aerr == nil, berr == nil); c != 0 {
			return c
		}
	case TypeDate:
		at, aok := toTime(a, as)
		bt, bok := toTime(b, bs)
		if aok && bok {
			return at.Compare(bt)
		}
		if c := compareParsed(aok, bok); c != 0 {
			return c
		}
	case TypeBool:
		ab, aerr := strconv.ParseBool(as)
		bb, berr := strconv.ParseBool(bs)
		if aerr == nil && berr == nil {
			return compareBool(ab, bb)
		}
		if c := compareParsed(aerr == nil, berr == nil); c != 0 {
			return c
		}
	}
	return strings.Compare(strings.ToLower(as), strings.ToLower(bs))
}

// compareParsed puts a parsed value ahead of an unparsed one. It returns
// 0 when neither side parsed.
func compareParsed(aok, bok bool) int {
	switch {
	case aok == bok:
		return 0
	case aok:
		return -1
	default:
		return 1
	}
}

func compareEmpty(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func compareOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func toFloat(v any, s string) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func toTime(v any, s string) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortVisible orders rows in place by spec. The sort is stable so equal
// values keep array order.
func sortVisible(rows []VisibleRow, spec SortSpec, typ string) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(typ, rows[i].Row[spec.Column], rows[j].Row[spec.Column])
		if spec.Direction == Descending {
			return c > 0
		}
		return c < 0
	})
}
