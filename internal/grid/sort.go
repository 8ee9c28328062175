package grid

// Direction of the active sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortSpec is the single active sort.
type SortSpec struct {
	Column    string
	Direction Direction
}

// SortCycle holds at most one SortSpec. Each column cycles
// none -> ascending -> descending -> none.
type SortCycle struct {
	active *SortSpec
}

// Toggle advances the cycle for column. A column other than the sorted
// one always starts at ascending; the previous column's state is dropped.
func (s *SortCycle) Toggle(column string) (SortSpec, bool) {
	switch {
	case s.active == nil || s.active.Column != column:
		s.active = &SortSpec{Column: column, Direction: Ascending}
	case s.active.Direction == Ascending:
		s.active.Direction = Descending
	default:
		s.active = nil
	}
	return s.Current()
}

// Current returns the active sort, if any.
func (s *SortCycle) Current() (SortSpec, bool) {
	if s.active == nil {
		return SortSpec{}, false
	}
	return *s.active, true
}

// Set replaces the active sort. An empty column clears it.
func (s *SortCycle) Set(spec SortSpec) {
	if spec.Column == "" {
		s.active = nil
		return
	}
	if spec.Direction != Descending {
		spec.Direction = Ascending
	}
	s.active = &spec
}

// Clear drops the active sort.
func (s *SortCycle) Clear() {
	s.active = nil
}
