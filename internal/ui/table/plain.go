package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/olekukonko/tablewriter"

	"github.com/freightdesk/gridkit/internal/grid"
)

// ExportRows flattens the grid's derived view for printing: every column
// that is not hidden, in display order, and the visible rows in view
// order. Cells keep their engine values so JSON output stays typed.
func ExportRows(g *grid.Grid) ([]string, [][]any) {
	var keys []string
	for _, c := range g.Columns() {
		if !c.Hidden {
			keys = append(keys, c.Key)
		}
	}

	visible := g.Visible()
	rows := make([][]any, len(visible))
	for i, vr := range visible {
		row := make([]any, len(keys))
		for j, k := range keys {
			row[j] = vr.Row[k]
		}
		rows[i] = row
	}
	return keys, rows
}

// PrintJSONResults outputs results as a JSON array of objects.
func PrintJSONResults(w io.Writer, colNames []string, rows [][]any) error {
	results := make([]map[string]any, len(rows))
	for i, row := range rows {
		obj := make(map[string]any, len(colNames))
		for j, colName := range colNames {
			if j < len(row) {
				obj[colName] = row[j]
			} else {
				obj[colName] = nil
			}
		}
		results[i] = obj
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// PrintRaw writes tab-separated rows (for piping).
func PrintRaw(w io.Writer, rows [][]any) {
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(formatCells(row), "\t"))
	}
}

// PrintPlainTable prints an aligned table for non-TTY output. Shows
// full content without truncation.
func PrintPlainTable(w io.Writer, colNames []string, rows [][]any) error {
	if len(colNames) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := tablewriter.NewWriter(w)
	t.Header(colNames)
	for _, row := range rows {
		if err := t.Append(formatCells(row)); err != nil {
			return err
		}
	}
	if err := t.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

// formatCells renders values the way the grid shows them, with NULL for
// missing values and control characters escaped so one row stays on one
// line.
func formatCells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			out[i] = "NULL"
			continue
		}
		s := grid.FormatValue(v)
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		s = strings.ReplaceAll(s, "\t", "\\t")
		out[i] = s
	}
	return out
}

// Pad adds spaces to reach the desired visual width (no truncation).
func Pad(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Truncate shortens a string to fit width, adding "..." if needed.
func Truncate(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	if width > 3 {
		return ansi.Truncate(s, width, "...")
	}
	return ansi.Truncate(s, width, "")
}

// PadOrTruncate pads or truncates to exact visual width (for TUI table).
func PadOrTruncate(s string, width int) string {
	return Pad(Truncate(s, width), width)
}
