package grid

// ResizeSession is the state of one drag gesture on a column edge. It
// lives from Begin to End or Cancel and is never persisted.
type ResizeSession struct {
	column     string
	startX     int
	startWidth int
	width      int
	active     bool
}

// Begin records the baseline of a drag, replacing any earlier session.
func (s *ResizeSession) Begin(column string, startX, startWidth int) {
	*s = ResizeSession{
		column:     column,
		startX:     startX,
		startWidth: startWidth,
		width:      startWidth,
		active:     true,
	}
}

// Drag returns the raw width for pointer position x. The value is not
// clamped; negative widths are the host's to reject.
func (s *ResizeSession) Drag(x int) (int, bool) {
	if !s.active {
		return 0, false
	}
	s.width = s.startWidth + (x - s.startX)
	return s.width, true
}

// End computes the final width for x and clears the session.
func (s *ResizeSession) End(x int) (column string, width int, err error) {
	if !s.active {
		return "", 0, ErrNoResize
	}
	column = s.column
	width = s.startWidth + (x - s.startX)
	*s = ResizeSession{}
	return column, width, nil
}

// Cancel clears the session without producing a width.
func (s *ResizeSession) Cancel() {
	*s = ResizeSession{}
}

// Active reports whether a drag is in progress and on which column.
func (s *ResizeSession) Active() (string, bool) {
	return s.column, s.active
}

// Width is the last computed width of the active drag.
func (s *ResizeSession) Width() int {
	return s.width
}
