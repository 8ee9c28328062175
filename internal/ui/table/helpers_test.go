package table

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/freightdesk/gridkit/internal/grid"
)

func fixtureColumns() []grid.Column {
	return []grid.Column{
		{Key: "id", Label: "ID", Type: grid.TypeNumber, Sortable: true, Width: 6},
		{Key: "status", Label: "Status", Sortable: true, Filterable: true, Width: 10},
		{Key: "departurePoint", Label: "From", Filterable: true, FilterMode: grid.FilterServer, Width: 14},
		{Key: "arrivalPoint", Label: "To", SubRow: true},
		{Key: "departedAt", Label: "Departed", Type: grid.TypeDate, SubRow: true},
	}
}

func fixtureRows() []grid.Row {
	return []grid.Row{
		{"id": int64(3), "status": "Active", "departurePoint": "Rotterdam", "arrivalPoint": "Hamburg", "departedAt": "2024-03-02"},
		{"id": int64(1), "status": "Closed", "departurePoint": "Antwerp", "arrivalPoint": "Lyon", "departedAt": "2024-01-15"},
		{"id": int64(2), "status": "active", "departurePoint": "Gdansk", "arrivalPoint": "Vienna", "departedAt": "2024-02-20"},
	}
}

func newFixtureGrid() *grid.Grid {
	g := grid.New(fixtureColumns(), grid.WithKeyColumn("id"))
	g.SetRows(fixtureRows())
	return g
}

// newTestModel returns a sized model with colors off.
func newTestModel(t *testing.T, g *grid.Grid, opts Options) gridModel {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	m := newGridModel(g, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(gridModel)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys to m and returns the model and the last command.
func press(m gridModel, keys ...string) (gridModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(gridModel)
	}
	return m, cmd
}

// typeText sends each rune of s as its own key press.
func typeText(m gridModel, s string) gridModel {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(gridModel)
	}
	return m
}

// collect runs cmd (expanding batches) and returns the messages it
// produced, skipping commands that only schedule timers.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(3 * time.Second):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func visibleIDs(m gridModel) []int64 {
	var out []int64
	for _, vr := range m.visible {
		out = append(out, vr.Row["id"].(int64))
	}
	return out
}
