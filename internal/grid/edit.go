package grid

// EditPhase is the tag of EditState.
type EditPhase int

const (
	EditIdle EditPhase = iota
	EditEditing
)

func (p EditPhase) String() string {
	if p == EditEditing {
		return "editing"
	}
	return "idle"
}

// EditTarget addresses one cell by row position and column key.
type EditTarget struct {
	Row    int
	Column string
}

// EditState is Idle or Editing{Target, Draft}. Target and Draft are
// meaningless while Idle.
type EditState struct {
	Phase  EditPhase
	Target EditTarget
	Draft  string
}

// Editing reports whether a cell is open.
func (s EditState) Editing() bool {
	return s.Phase == EditEditing
}

// EditEventKind enumerates the inputs to the edit machine.
type EditEventKind int

const (
	EventStart EditEventKind = iota
	EventDraft
	EventCommit
	EventCancel
)

// EditEvent is one input to Transition. Target is used by Start and
// Commit; Value by Draft and Commit.
type EditEvent struct {
	Kind   EditEventKind
	Target EditTarget
	Value  string
}

// EditEffect tells the caller what to do with row data after a
// transition.
type EditEffect int

const (
	EffectNone EditEffect = iota
	// EffectDiscard means an open edit was abandoned without writing.
	EffectDiscard
	// EffectCommit means Value must be written to the event's Target.
	EffectCommit
)

// Transition is the whole edit state machine. It never touches rows;
// the returned effect says whether the caller must.
//
//	Idle    + Start  -> Editing              (none)
//	Editing + Start  -> Editing(new target)  (discard)
//	Editing + Draft  -> Editing(new draft)   (none)
//	Editing + Commit -> Idle                 (commit)
//	Editing + Cancel -> Idle                 (discard)
//	Idle    + Draft/Commit/Cancel -> Idle    (none)
func Transition(s EditState, ev EditEvent) (EditState, EditEffect) {
	switch ev.Kind {
	case EventStart:
		next := EditState{Phase: EditEditing, Target: ev.Target, Draft: ev.Value}
		if s.Editing() {
			return next, EffectDiscard
		}
		return next, EffectNone
	case EventDraft:
		if !s.Editing() {
			return s, EffectNone
		}
		s.Draft = ev.Value
		return s, EffectNone
	case EventCommit:
		if !s.Editing() {
			return s, EffectNone
		}
		return EditState{}, EffectCommit
	case EventCancel:
		if !s.Editing() {
			return s, EffectNone
		}
		return EditState{}, EffectDiscard
	}
	return s, EffectNone
}

// EditSession owns the single edit slot and applies commits to a
// RowStore.
type EditSession struct {
	state EditState
	rows  *RowStore
}

// NewEditSession binds a session to rows.
func NewEditSession(rows *RowStore) *EditSession {
	return &EditSession{rows: rows}
}

// State returns the current state.
func (e *EditSession) State() EditState {
	return e.state
}

// Start opens target with an initial draft, abandoning any open edit.
// It reports whether an earlier edit was discarded.
func (e *EditSession) Start(target EditTarget, draft string) bool {
	var eff EditEffect
	e.state, eff = Transition(e.state, EditEvent{Kind: EventStart, Target: target, Value: draft})
	return eff == EffectDiscard
}

// SetDraft updates the in-progress value.
func (e *EditSession) SetDraft(value string) {
	e.state, _ = Transition(e.state, EditEvent{Kind: EventDraft, Value: value})
}

// Commit writes value into the addressed cell and returns to Idle. While
// Idle it does nothing and reports false.
func (e *EditSession) Commit(target EditTarget, value any) (bool, error) {
	if !e.state.Editing() {
		return false, nil
	}
	if _, ok := e.rows.At(target.Row); !ok {
		return false, ErrRowOutOfRange
	}
	next, eff := Transition(e.state, EditEvent{Kind: EventCommit, Target: target})
	if eff != EffectCommit {
		return false, nil
	}
	if err := e.rows.Merge(target.Row, target.Column, value); err != nil {
		return false, err
	}
	e.state = next
	return true, nil
}

// Cancel returns to Idle without touching data. It reports whether an
// edit was open.
func (e *EditSession) Cancel() bool {
	var eff EditEffect
	e.state, eff = Transition(e.state, EditEvent{Kind: EventCancel})
	return eff == EffectDiscard
}

// Reset drops any open edit; used when the row array is replaced.
func (e *EditSession) Reset() {
	e.state = EditState{}
}
