package grid

// KeySet is the engine behind both SelectionTracker and ExpansionTracker:
// a set of row keys with an involutive Toggle.
type KeySet struct {
	members map[RowKey]struct{}
}

// SelectionTracker holds the selected rows.
type SelectionTracker struct{ KeySet }

// ExpansionTracker holds the rows whose sub-row content is open.
type ExpansionTracker struct{ KeySet }

// Toggle flips membership of key and reports whether it is now a member.
// Calling it twice with the same key restores the prior state.
func (s *KeySet) Toggle(key RowKey) bool {
	if s.members == nil {
		s.members = make(map[RowKey]struct{})
	}
	if _, ok := s.members[key]; ok {
		delete(s.members, key)
		return false
	}
	s.members[key] = struct{}{}
	return true
}

// Has reports membership.
func (s *KeySet) Has(key RowKey) bool {
	_, ok := s.members[key]
	return ok
}

// Len returns the number of members.
func (s *KeySet) Len() int {
	return len(s.members)
}

// Keys returns the members in no particular order.
func (s *KeySet) Keys() []RowKey {
	out := make([]RowKey, 0, len(s.members))
	for k := range s.members {
		out = append(out, k)
	}
	return out
}

// Clear empties the set.
func (s *KeySet) Clear() {
	s.members = nil
}

// Retain drops every member not in live. Run after the row array is
// replaced so no entry refers to a row that is gone.
func (s *KeySet) Retain(live map[RowKey]struct{}) int {
	dropped := 0
	for k := range s.members {
		if _, ok := live[k]; !ok {
			delete(s.members, k)
			dropped++
		}
	}
	return dropped
}
