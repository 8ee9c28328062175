package grid

// SubRowColumnOrder is the user-arranged order of the columns rendered
// as sub-row content. It is kept apart from the registry's flags and is
// not validated against them.
type SubRowColumnOrder struct {
	keys []string
}

// NewSubRowColumnOrder seeds the order from the currently flagged columns.
func NewSubRowColumnOrder(reg *ColumnRegistry) *SubRowColumnOrder {
	return &SubRowColumnOrder{keys: reg.SubRowKeys()}
}

// Replace swaps in newOrder wholesale. The sequence is trusted as given.
func (o *SubRowColumnOrder) Replace(newOrder []string) {
	o.keys = append([]string(nil), newOrder...)
}

// Keys returns the stored order exactly as last set.
func (o *SubRowColumnOrder) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Resolve reconciles the stored order with the registry: stored keys
// that are currently flagged come first, each once, followed by flagged
// columns the order does not mention, in display order.
func (o *SubRowColumnOrder) Resolve(reg *ColumnRegistry) []Column {
	seen := make(map[string]bool, len(o.keys))
	var out []Column
	for _, k := range o.keys {
		c, ok := reg.Get(k)
		if !ok || !c.SubRow || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	for _, c := range reg.Columns() {
		if c.SubRow && !seen[c.Key] {
			seen[c.Key] = true
			out = append(out, c)
		}
	}
	return out
}

// Move shifts key by delta positions within the resolved order and
// stores the result. It returns the new order.
func (o *SubRowColumnOrder) Move(reg *ColumnRegistry, key string, delta int) []string {
	resolved := o.Resolve(reg)
	order := make([]string, len(resolved))
	from := -1
	for i, c := range resolved {
		order[i] = c.Key
		if c.Key == key {
			from = i
		}
	}
	if from < 0 {
		return order
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to >= len(order) {
		to = len(order) - 1
	}
	k := order[from]
	order = append(order[:from], order[from+1:]...)
	order = append(order[:to], append([]string{k}, order[to:]...)...)
	o.Replace(order)
	return order
}
