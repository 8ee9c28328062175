package grid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// FilterSpec is one committed filter. The committed list holds at most
// one spec per column.
type FilterSpec struct {
	Column string
	Value  string
	Mode   FilterMode
}

// ServerFilterFunc runs a query for the full proposed filter list. It
// must not touch engine state; fresh rows reach the engine through the
// host's own reload path (Grid.SetRows).
type ServerFilterFunc func(ctx context.Context, proposed []FilterSpec) error

// FilterPolicy decides which of several overlapping server requests for
// the same column may commit.
type FilterPolicy int

const (
	// LatestIssuedWins commits only the most recently issued request per
	// column; older ones settle with ErrStaleFilter.
	LatestIssuedWins FilterPolicy = iota
	// LastSettledWins lets whichever request settles last commit.
	LastSettledWins
)

// FilterCoordinator owns the committed filter list and the pending
// server requests. Server operations run without the lock held, so
// Apply may be called from a goroutine while the host keeps reading.
type FilterCoordinator struct {
	mu        sync.Mutex
	committed []FilterSpec
	seq       uint64
	issued    map[string]uint64
	pending   map[string]int
	policy    FilterPolicy
	logger    *slog.Logger
}

// NewFilterCoordinator returns an empty coordinator.
func NewFilterCoordinator(policy FilterPolicy, logger *slog.Logger) *FilterCoordinator {
	if logger == nil {
		logger = discardLogger()
	}
	return &FilterCoordinator{
		issued:  make(map[string]uint64),
		pending: make(map[string]int),
		policy:  policy,
		logger:  logger,
	}
}

// upsertOrRemove is the single list rule shared by both modes: an empty
// value removes the column's entry, anything else replaces it in place
// or appends it. list is never modified.
func upsertOrRemove(list []FilterSpec, spec FilterSpec) []FilterSpec {
	out := make([]FilterSpec, 0, len(list)+1)
	replaced := false
	for _, f := range list {
		if f.Column != spec.Column {
			out = append(out, f)
			continue
		}
		if spec.Value != "" && !replaced {
			out = append(out, spec)
			replaced = true
		}
	}
	if spec.Value != "" && !replaced {
		out = append(out, spec)
	}
	return out
}

// Apply routes spec through the column's mode. Local columns, and server
// columns without an operation, commit synchronously. Server columns
// compute the proposed list, call op with it and commit only on success;
// on failure the committed list is left as it was and the error is
// logged and returned.
//
// The committed update is rebased: the rule is re-applied for this column
// on the list as it stands at settle time, so filters other columns
// changed in the meantime survive. When that leaves a different set of server filters
// than the one op queried with, the commit stands but Apply returns
// ErrFilterRebased: the fetched rows no longer match and the host should
// reload with the committed list.
func (f *FilterCoordinator) Apply(ctx context.Context, spec FilterSpec, col Column, op ServerFilterFunc) error {
	spec.Column = col.Key
	spec.Mode = col.FilterMode

	if col.FilterMode != FilterServer || op == nil {
		f.mu.Lock()
		f.committed = upsertOrRemove(f.committed, spec)
		f.mu.Unlock()
		return nil
	}

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.issued[spec.Column] = seq
	f.pending[spec.Column]++
	proposed := upsertOrRemove(f.committed, spec)
	f.mu.Unlock()

	err := op(ctx, proposed)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending[spec.Column]--; f.pending[spec.Column] <= 0 {
		delete(f.pending, spec.Column)
	}
	if err != nil {
		f.logger.Warn("server filter failed", "column", spec.Column, "seq", seq, "err", err)
		return fmt.Errorf("server filter on %q: %w", spec.Column, err)
	}
	if f.policy == LatestIssuedWins && f.issued[spec.Column] != seq {
		f.logger.Debug("server filter superseded", "column", spec.Column, "seq", seq, "latest", f.issued[spec.Column])
		return ErrStaleFilter
	}
	f.committed = upsertOrRemove(f.committed, spec)
	if !sameServerSpecs(proposed, f.committed) {
		f.logger.Debug("server filter rebased", "column", spec.Column, "seq", seq, "fetched", proposed, "committed", f.committed)
		return ErrFilterRebased
	}
	return nil
}

// sameServerSpecs reports whether a and b hold the same server-mode
// filters in the same order. Local entries are ignored.
func sameServerSpecs(a, b []FilterSpec) bool {
	a, b = serverOnly(a), serverOnly(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func serverOnly(list []FilterSpec) []FilterSpec {
	var out []FilterSpec
	for _, s := range list {
		if s.Mode == FilterServer {
			out = append(out, s)
		}
	}
	return out
}

// Clear removes column's entry at once, whatever its mode, and never
// calls a server operation. Under LatestIssuedWins it also supersedes
// any request still outstanding for the column.
func (f *FilterCoordinator) Clear(column string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = upsertOrRemove(f.committed, FilterSpec{Column: column})
	if f.policy == LatestIssuedWins && f.pending[column] > 0 {
		f.seq++
		f.issued[column] = f.seq
	}
}

// Filters returns a copy of the committed list.
func (f *FilterCoordinator) Filters() []FilterSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FilterSpec(nil), f.committed...)
}

// Value returns the committed value for column.
func (f *FilterCoordinator) Value(column string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.committed {
		if s.Column == column {
			return s.Value, true
		}
	}
	return "", false
}

// Pending reports whether a server request for column is outstanding.
func (f *FilterCoordinator) Pending(column string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending[column] > 0
}

// PendingCount returns the number of outstanding server requests.
func (f *FilterCoordinator) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.pending {
		n += c
	}
	return n
}

// matchLocal reports whether row passes every local filter in filters.
// Matching is a case-insensitive substring test on the formatted value.
func matchLocal(row Row, filters []FilterSpec) bool {
	for _, f := range filters {
		if f.Mode != FilterLocal {
			continue
		}
		val := strings.ToLower(FormatValue(row[f.Column]))
		if !strings.Contains(val, strings.ToLower(f.Value)) {
			return false
		}
	}
	return true
}
