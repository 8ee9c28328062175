package table

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/freightdesk/gridkit/internal/ui/styles"
)

// EditSummary renders a character diff between a cell's old and new
// value. Without color, removals print as [-x-] and insertions as {+y+}.
func EditSummary(before, after string) string {
	if before == after {
		return "unchanged"
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	plain := styles.NoColor()
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			if plain {
				sb.WriteString("[-" + d.Text + "-]")
			} else {
				sb.WriteString(styles.DiffRemove.Render(d.Text))
			}
		case diffmatchpatch.DiffInsert:
			if plain {
				sb.WriteString("{+" + d.Text + "+}")
			} else {
				sb.WriteString(styles.DiffAdd.Render(d.Text))
			}
		}
	}
	return sb.String()
}
