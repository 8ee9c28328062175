package table

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/ui/styles"
)

// headerLineY is the screen row of the column header.
const headerLineY = 2

// ═══════════════════════════════════════════════════════════════════════════
// Sub-row rendering
// ═══════════════════════════════════════════════════════════════════════════

// FieldRenderer draws an expanded row as one "label  value" line per
// sub-row column. The field being edited shows its draft.
type FieldRenderer struct {
	// Focus marks one field, typically the sub-row cursor.
	Focus string
}

var _ grid.SubRowRenderer = FieldRenderer{}

// RenderSubRow implements grid.SubRowRenderer.
func (r FieldRenderer) RenderSubRow(row grid.Row, index int, columns []grid.Column, edits grid.EditController) string {
	if len(columns) == 0 {
		return styles.Mute("(no sub-row columns)")
	}

	labelWidth := 0
	for _, c := range columns {
		labelWidth = max(labelWidth, ansi.StringWidth(c.Label))
	}

	st := edits.EditState()
	lines := make([]string, len(columns))
	for i, c := range columns {
		marker := "  "
		if c.Key == r.Focus {
			marker = styles.Render(styles.SortStyle, "› ")
		}
		val := grid.FormatValue(row[c.Key])
		if st.Editing() && st.Target.Row == index && st.Target.Column == c.Key {
			val = styles.Render(styles.EditStyle, st.Draft) + "▏"
		}
		label := styles.Render(styles.SubLabelStyle, Pad(c.Label, labelWidth))
		lines[i] = marker + label + "  " + val
	}
	return strings.Join(lines, "\n")
}

func (m gridModel) renderSubRow(vr grid.VisibleRow) string {
	r := m.opts.Renderer
	if r == nil {
		focus := ""
		if cur, ok := m.currentRow(); ok && cur.Key == vr.Key {
			focus = m.subFocusKey()
		}
		r = FieldRenderer{Focus: focus}
	}
	return r.RenderSubRow(vr.Row, vr.Index, m.grid.ResolvedSubRowColumns(), m.grid)
}

// ═══════════════════════════════════════════════════════════════════════════
// View
// ═══════════════════════════════════════════════════════════════════════════

func (m gridModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder

	sb.WriteString(m.renderTitle())
	sb.WriteString("\n")
	sb.WriteString(m.renderPrompt())
	sb.WriteString("\n")
	sb.WriteString(m.renderTable())
	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())

	return sb.String()
}

func (m gridModel) renderTitle() string {
	total := len(m.grid.Rows())
	title := fmt.Sprintf("%s: %d rows", m.opts.Title, len(m.visible))
	if len(m.visible) != total {
		title = fmt.Sprintf("%s: %d/%d rows", m.opts.Title, len(m.visible), total)
	}
	if n := len(m.grid.Selected()); n > 0 {
		title += fmt.Sprintf(", %d selected", n)
	}
	out := styles.Render(styles.Bold.Foreground(styles.Accent), title)

	var badges []string
	for _, f := range m.grid.Filters() {
		badges = append(badges, styles.FilterBadge(f.Column, f.Value, m.grid.FilterPending(f.Column)))
	}
	if len(badges) > 0 {
		out += "  " + strings.Join(badges, " ")
	}
	if m.pending > 0 {
		out += "  " + m.spinner.View() + styles.Mutef(" %d pending", m.pending)
	}
	return out
}

func (m gridModel) renderPrompt() string {
	switch m.mode {
	case modeFilter:
		return fmt.Sprintf("filter %s: %s", m.inputCol, m.input.View())
	case modeEdit:
		st := m.grid.EditState()
		return fmt.Sprintf("edit %s[%d]: %s", st.Target.Column, st.Target.Row, m.input.View())
	case modeResize:
		key, width, _ := m.grid.Resizing()
		return styles.Mutef("resize %s: %d  (< > adjust, enter commit, esc cancel)", key, width)
	}
	return ""
}

func (m gridModel) renderFooter() string {
	if m.statusMsg != "" && time.Now().Before(m.statusUntil) {
		if m.statusErr {
			return styles.WarningMsg(m.statusMsg)
		}
		return styles.SuccessMsg(m.statusMsg)
	}
	switch m.mode {
	case modeFilter, modeEdit:
		return styles.MutedMsg("enter confirm  esc cancel")
	case modeResize:
		return styles.MutedMsg("< > resize  enter commit  esc cancel")
	}
	return styles.MutedMsg("↑↓←→ nav  s sort  / filter  x clear  space select  tab expand  e edit  E edit field  S/U sub-row  [ ] order  < > width  H hide  y copy  J/R/P print  q quit")
}

// ═══════════════════════════════════════════════════════════════════════════
// Render Table
// ═══════════════════════════════════════════════════════════════════════════

func (m gridModel) renderTable() string {
	cols := m.mainColumns()
	if len(cols) == 0 {
		return "No columns"
	}

	var sb strings.Builder
	vw := m.viewportWidth()
	gutter := strings.Repeat(" ", gutterWidth)

	sb.WriteString(gutter + viewport(m.headerLine(cols), m.scrollX, vw))
	sb.WriteString("\n")
	sb.WriteString(gutter + viewport(m.separatorLine(cols), m.scrollX, vw))
	sb.WriteString("\n")

	avail := m.visibleLineCount()
	used := 0
	for i := m.scrollY; i < len(m.visible) && used < avail; i++ {
		vr := m.visible[i]
		isCursor := i == m.cursor

		sb.WriteString(m.rowGutter(vr))
		sb.WriteString(viewport(m.rowLine(cols, vr, isCursor), m.scrollX, vw))
		sb.WriteString("\n")
		used++

		if vr.Expanded {
			for _, line := range strings.Split(m.renderSubRow(vr), "\n") {
				if used >= avail {
					break
				}
				sb.WriteString(gutter + "  " + line + "\n")
				used++
			}
		}
	}
	if len(m.visible) == 0 {
		sb.WriteString(styles.Mute(gutter+"(no rows)") + "\n")
	}

	var indicators []string
	if m.scrollX > 0 {
		indicators = append(indicators, "◀")
	}
	if m.scrollX+vw < m.totalWidth() {
		indicators = append(indicators, "▶")
	}
	if m.scrollY > 0 {
		indicators = append(indicators, "▲")
	}
	if m.scrollY+used < len(m.visible) {
		indicators = append(indicators, "▼")
	}
	sb.WriteString(styles.MutedMsg(strings.Join(indicators, " ")))

	return sb.String()
}

func (m gridModel) rowGutter(vr grid.VisibleRow) string {
	sel := " "
	if vr.Selected {
		sel = styles.Render(styles.SortStyle, styles.SymbolSelected)
	}
	exp := styles.Mute(styles.SymbolCollapsed)
	if vr.Expanded {
		exp = styles.Render(styles.SortStyle, styles.SymbolExpanded)
	}
	return sel + exp + " "
}

func (m gridModel) headerLine(cols []grid.Column) string {
	sortSpec, sorted := m.grid.Sort()
	resizing, _, isResizing := m.grid.Resizing()

	var sb strings.Builder
	for i, c := range cols {
		w := m.colDisplayWidth(c)

		label := c.Label
		if c.Hidden {
			label = "..."
		} else if sorted && sortSpec.Column == c.Key {
			suffix := " " + styles.SortIndicator(sortSpec.Direction == grid.Descending)
			label = PadOrTruncate(label, max(w-2, 1)) + suffix
		}
		cell := PadOrTruncate(label, w)

		switch {
		case isResizing && resizing == c.Key:
			sb.WriteString(styles.Render(styles.ResizeStyle, cell))
		case i == m.colCursor:
			sb.WriteString(styles.Render(styles.SortStyle, cell))
		default:
			sb.WriteString(styles.Render(styles.HeaderStyle, cell))
		}
		sb.WriteString("  ")
	}
	return sb.String()
}

func (m gridModel) separatorLine(cols []grid.Column) string {
	var sb strings.Builder
	for i, c := range cols {
		sep := strings.Repeat("─", m.colDisplayWidth(c))
		if i == m.colCursor {
			sb.WriteString(styles.Render(styles.SortStyle, sep))
		} else {
			sb.WriteString(styles.Mute(sep))
		}
		sb.WriteString("  ")
	}
	return sb.String()
}

func (m gridModel) rowLine(cols []grid.Column, vr grid.VisibleRow, isCursor bool) string {
	st := m.grid.EditState()

	var sb strings.Builder
	for i, c := range cols {
		w := m.colDisplayWidth(c)

		var cell string
		editing := st.Editing() && st.Target.Row == vr.Index && st.Target.Column == c.Key
		switch {
		case c.Hidden:
			cell = PadOrTruncate("...", w)
		case editing:
			cell = PadOrTruncate(styles.Render(styles.EditStyle, st.Draft)+"▏", w)
		default:
			cell = PadOrTruncate(grid.FormatValue(vr.Row[c.Key]), w)
		}

		switch {
		case editing:
			sb.WriteString(cell)
		case isCursor && i == m.colCursor:
			sb.WriteString(styles.Render(styles.SortStyle.Reverse(true), cell))
		case isCursor:
			sb.WriteString(styles.Render(styles.CursorStyle, cell))
		case vr.Selected:
			sb.WriteString(styles.Render(styles.SelectedStyle, cell))
		default:
			sb.WriteString(cell)
		}
		sb.WriteString("  ")
	}
	return sb.String()
}

// viewport cuts the visual columns [startX, startX+width) out of s,
// keeping ANSI styling intact, and pads to width.
func viewport(s string, startX, width int) string {
	if width <= 0 {
		return ""
	}
	cut := ansi.Cut(s, max(startX, 0), max(startX, 0)+width)
	if w := ansi.StringWidth(cut); w < width {
		cut += strings.Repeat(" ", width-w)
	}
	return cut
}
