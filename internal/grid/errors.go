package grid

import "errors"

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrRowOutOfRange = errors.New("row index out of range")
	ErrNoResize      = errors.New("no resize in progress")
	ErrStaleFilter   = errors.New("filter result superseded by a newer request")
	ErrNotEditing    = errors.New("no edit in progress")
	ErrFilterRebased = errors.New("filter committed but server filters changed while it was in flight")
)
