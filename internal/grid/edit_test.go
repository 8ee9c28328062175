package grid

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	a := EditTarget{Row: 0, Column: "status"}
	b := EditTarget{Row: 1, Column: "status"}
	editingA := EditState{Phase: EditEditing, Target: a, Draft: "x"}

	tests := []struct {
		name      string
		from      EditState
		ev        EditEvent
		wantPhase EditPhase
		wantEff   EditEffect
	}{
		{"idle start", EditState{}, EditEvent{Kind: EventStart, Target: a}, EditEditing, EffectNone},
		{"switch discards", editingA, EditEvent{Kind: EventStart, Target: b}, EditEditing, EffectDiscard},
		{"draft", editingA, EditEvent{Kind: EventDraft, Value: "y"}, EditEditing, EffectNone},
		{"commit", editingA, EditEvent{Kind: EventCommit, Target: a}, EditIdle, EffectCommit},
		{"cancel", editingA, EditEvent{Kind: EventCancel}, EditIdle, EffectDiscard},
		{"idle commit", EditState{}, EditEvent{Kind: EventCommit, Target: a}, EditIdle, EffectNone},
		{"idle cancel", EditState{}, EditEvent{Kind: EventCancel}, EditIdle, EffectNone},
		{"idle draft", EditState{}, EditEvent{Kind: EventDraft, Value: "y"}, EditIdle, EffectNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, eff := Transition(tt.from, tt.ev)
			if next.Phase != tt.wantPhase {
				t.Fatalf("phase = %s, want %s", next.Phase, tt.wantPhase)
			}
			if eff != tt.wantEff {
				t.Fatalf("effect = %d, want %d", eff, tt.wantEff)
			}
		})
	}
}

func TestGridEdit_SwitchDiscardsWithoutWriting(t *testing.T) {
	g := newSampleGrid()
	before, _ := g.Row(0)
	status := before["status"]

	if err := g.StartEdit(0, "status"); err != nil {
		t.Fatal(err)
	}
	g.SetDraft("Cancelled")
	if err := g.StartEdit(1, "departurePoint"); err != nil {
		t.Fatal(err)
	}

	rowA, _ := g.Row(0)
	if rowA["status"] != status {
		t.Fatalf("row A status = %v, want %v", rowA["status"], status)
	}
	st := g.EditState()
	if !st.Editing() || st.Target.Row != 1 || st.Target.Column != "departurePoint" {
		t.Fatalf("state = %+v, want editing row 1 departurePoint", st)
	}
	if st.Draft != "Antwerp" {
		t.Fatalf("draft = %q, want current cell value", st.Draft)
	}
}

func TestGridEdit_CommitMergesSingleField(t *testing.T) {
	g := newSampleGrid()
	old, _ := g.Row(2)

	_ = g.StartEdit(2, "status")
	if err := g.CommitEdit(2, "status", "Closed"); err != nil {
		t.Fatal(err)
	}

	row, _ := g.Row(2)
	if row["status"] != "Closed" {
		t.Fatalf("status = %v", row["status"])
	}
	if row["departurePoint"] != "Gdansk" || row["id"] != 2 {
		t.Fatalf("other fields changed: %v", row)
	}
	if old["status"] != "active" {
		t.Fatal("commit mutated the previous row map")
	}
	if g.EditState().Editing() {
		t.Fatal("still editing after commit")
	}
}

func TestGridEdit_IdleCommitAndCancelAreNoOps(t *testing.T) {
	g := newSampleGrid()
	if err := g.CommitEdit(0, "status", "X"); err != nil {
		t.Fatal(err)
	}
	g.CancelEdit()
	row, _ := g.Row(0)
	if row["status"] != "Active" {
		t.Fatalf("idle commit wrote data: %v", row["status"])
	}
}

func TestGridEdit_CancelLeavesData(t *testing.T) {
	g := newSampleGrid()
	_ = g.StartEdit(0, "status")
	g.SetDraft("Gone")
	g.CancelEdit()

	row, _ := g.Row(0)
	if row["status"] != "Active" {
		t.Fatalf("status = %v", row["status"])
	}
	if g.EditState().Editing() {
		t.Fatal("still editing")
	}
}

func TestGridEdit_CommitDraft(t *testing.T) {
	g := newSampleGrid()
	_ = g.StartEdit(1, "arrivalPoint")
	g.SetDraft("Milan")
	if err := g.CommitDraft(); err != nil {
		t.Fatal(err)
	}
	row, _ := g.Row(1)
	if row["arrivalPoint"] != "Milan" {
		t.Fatalf("arrivalPoint = %v", row["arrivalPoint"])
	}
}

func TestGridEdit_StartOutOfRange(t *testing.T) {
	g := newSampleGrid()
	if err := g.StartEdit(9, "status"); !errors.Is(err, ErrRowOutOfRange) {
		t.Fatalf("err = %v", err)
	}
	if err := g.StartEdit(0, "nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v", err)
	}
}

func TestGridEdit_CommitUnknownColumnLeavesRow(t *testing.T) {
	g := newSampleGrid()
	before, _ := g.Row(0)
	_ = g.StartEdit(0, "status")

	if err := g.CommitEdit(0, "nope", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
	row, _ := g.Row(0)
	if _, ok := row["nope"]; ok {
		t.Fatalf("row gained a field: %v", row)
	}
	if len(row) != len(before) {
		t.Fatalf("row has %d fields, want %d", len(row), len(before))
	}
	if !g.EditState().Editing() {
		t.Fatal("rejected commit closed the open edit")
	}
}

func TestGridEdit_FollowsRowAcrossReload(t *testing.T) {
	g := newSampleGrid()
	_ = g.StartEdit(0, "status") // id 3
	g.SetDraft("Held")

	rows := sampleRows()
	rows[0], rows[2] = rows[2], rows[0]
	g.SetRows(rows)

	st := g.EditState()
	if !st.Editing() || st.Target.Row != 2 || st.Draft != "Held" {
		t.Fatalf("state = %+v, want editing row 2 with draft", st)
	}

	g.SetRows(rows[:2])
	if g.EditState().Editing() {
		t.Fatal("edit survived removal of its row")
	}
}
