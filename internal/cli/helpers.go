package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freightdesk/gridkit/internal/config"
	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/source"
	"github.com/freightdesk/gridkit/internal/util"
)

// session is everything a command needs to show one grid.
type session struct {
	cfg     *config.GridConfig
	global  *config.GlobalConfig
	backend source.Backend
	query   source.Query
	grid    *grid.Grid

	// fetched holds rows from the last successful server filter until
	// the caller hands them to the grid.
	fetched   []grid.Row
	delivered bool
}

func (s *session) Close() {
	if s.backend != nil {
		s.backend.Close()
	}
}

// loadConfigs reads --config and the global preferences.
func loadConfigs(cmd *cobra.Command) (*config.GridConfig, *config.GlobalConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultGridFile
	}
	cfg, err := config.LoadGrid(path)
	if err != nil {
		return nil, nil, err
	}
	global, err := config.LoadGlobal()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load global config: %w", err)
	}
	return cfg, global, nil
}

// sourceDriver returns the configured driver, or one guessed from url.
func sourceDriver(cfg *config.GridConfig, url string) string {
	if cfg.Source.Driver != "" {
		return cfg.Source.Driver
	}
	switch {
	case url == "":
		return ""
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return source.DriverPostgres
	default:
		return source.DriverSQLite
	}
}

// openSession connects to the source, fetches the first page and mounts
// a grid over it. Server filters applied through the grid leave their
// rows in s.fetched; see applyFilter.
func openSession(ctx context.Context, cfg *config.GridConfig, global *config.GlobalConfig, logger *slog.Logger) (*session, error) {
	url := cfg.Source.URL
	if url == "" {
		url = global.Source.URL
	}
	driver := sourceDriver(cfg, url)

	backend, err := source.Open(ctx, driver, url)
	if err != nil {
		if driver == "" {
			return nil, util.NewError("No data source configured").
				WithMessage("Set [source] url in grid.toml or a default with gridkit config").
				WithSuggestions("gridkit config source.url ./orders.db").
				Wrap(err)
		}
		return nil, util.SourceConnectionError(driver, url, err)
	}

	s := &session{
		cfg:     cfg,
		global:  global,
		backend: backend,
		query:   cfg.Query(global),
	}

	rows, err := backend.Fetch(ctx, s.query)
	if err != nil {
		backend.Close()
		return nil, util.SourceConnectionError(driver, url, err)
	}
	logger.Debug("rows fetched", "table", s.query.Table, "count", len(rows))

	s.grid = grid.New(cfg.GridColumns(global),
		grid.WithKeyColumn(cfg.Source.KeyColumn),
		grid.WithFilterPolicy(cfg.Policy(global)),
		grid.WithLogger(logger),
		grid.WithServerFilter(source.ServerFilter(backend, s.query, func(rows []grid.Row) {
			s.fetched, s.delivered = rows, true
		})),
	)
	s.grid.SetRows(rows)
	return s, nil
}

// applyFilter applies spec through the grid and loads the rows a server
// filter fetched. A rebased commit refetches with the committed list.
func (s *session) applyFilter(ctx context.Context, spec grid.FilterSpec) error {
	s.fetched, s.delivered = nil, false
	err := s.grid.ApplyFilter(ctx, spec)
	if errors.Is(err, grid.ErrFilterRebased) {
		q := s.query
		q.Filters = source.ServerSpecs(s.grid.Filters())
		rows, ferr := s.backend.Fetch(ctx, q)
		if ferr != nil {
			return ferr
		}
		s.grid.SetRows(rows)
		s.fetched, s.delivered = nil, false
		return nil
	}
	if err != nil {
		return err
	}
	if s.delivered {
		s.grid.SetRows(s.fetched)
		s.fetched, s.delivered = nil, false
	}
	return nil
}

// parseFilterFlag splits "column=value".
func parseFilterFlag(s string) (grid.FilterSpec, error) {
	col, value, ok := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return grid.FilterSpec{}, fmt.Errorf("invalid filter %q (want column=value)", s)
	}
	return grid.FilterSpec{Column: col, Value: value}, nil
}

// parseSortFlag splits "column" or "column:asc|desc".
func parseSortFlag(s string) (grid.SortSpec, error) {
	col, dir, _ := strings.Cut(s, ":")
	col = strings.TrimSpace(col)
	if col == "" {
		return grid.SortSpec{}, fmt.Errorf("invalid sort %q (want column[:desc])", s)
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		return grid.SortSpec{Column: col, Direction: grid.Ascending}, nil
	case "desc":
		return grid.SortSpec{Column: col, Direction: grid.Descending}, nil
	}
	return grid.SortSpec{}, fmt.Errorf("invalid sort direction %q (want asc or desc)", dir)
}

// applySort drives the sort cycle until it reaches spec.
func applySort(g *grid.Grid, spec grid.SortSpec, known []string) error {
	col, ok := g.Column(spec.Column)
	if !ok {
		return util.UnknownColumnError(spec.Column, known)
	}
	if !col.Sortable {
		return fmt.Errorf("column %q is not sortable", spec.Column)
	}
	for range 3 {
		cur, active, err := g.ToggleSort(spec.Column)
		if err != nil {
			return err
		}
		if active && cur == spec {
			return nil
		}
	}
	return fmt.Errorf("could not sort by %s", spec.Column)
}
