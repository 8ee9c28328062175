// Package table hosts a grid on the terminal. It provides the
// interactive grid (sort, filter, selection, expansion with sub-rows,
// editing, resizing), plain text tables, JSON output, and raw
// tab-separated output.
package table

import (
	"os"

	"golang.org/x/term"

	"github.com/freightdesk/gridkit/internal/grid"
)

// DisplayOptions controls how results are rendered.
type DisplayOptions struct {
	// JSON outputs results as a JSON array of objects.
	JSON bool
	// Raw outputs results as tab-separated values (for piping).
	Raw bool
	// NoPager forces plain table output even on a TTY.
	NoPager bool
}

// DisplayResults picks the right output mode based on options and
// environment, then renders the grid's visible rows. Interactive mode
// uses tui; the other modes print to tui.Output (stdout by default).
func DisplayResults(g *grid.Grid, tui Options, opts DisplayOptions) error {
	tui.setDefaults()
	headers, rows := ExportRows(g)

	if opts.Raw {
		PrintRaw(tui.Output, rows)
		return nil
	}
	if opts.JSON {
		return PrintJSONResults(tui.Output, headers, rows)
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if !isTTY || opts.NoPager || len(rows) == 0 {
		return PrintPlainTable(tui.Output, headers, rows)
	}
	return RunGridTUI(g, tui)
}
