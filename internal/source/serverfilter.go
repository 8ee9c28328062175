package source

import (
	"context"

	"github.com/freightdesk/gridkit/internal/grid"
)

// ServerFilter adapts a backend into the engine's server operation. Each
// call re-runs base with the server-mode entries of the proposed list;
// local entries are left for the engine to evaluate on the rows. On
// success the fetched rows go to deliver, which may be nil.
func ServerFilter(b Backend, base Query, deliver func([]grid.Row)) grid.ServerFilterFunc {
	return func(ctx context.Context, proposed []grid.FilterSpec) error {
		q := base
		q.Filters = ServerSpecs(proposed)
		rows, err := b.Fetch(ctx, q)
		if err != nil {
			return err
		}
		if deliver != nil {
			deliver(rows)
		}
		return nil
	}
}

// ServerSpecs keeps the server-mode entries of filters.
func ServerSpecs(filters []grid.FilterSpec) []grid.FilterSpec {
	var out []grid.FilterSpec
	for _, f := range filters {
		if f.Mode == grid.FilterServer {
			out = append(out, f)
		}
	}
	return out
}
