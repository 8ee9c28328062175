package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/source"
	"github.com/freightdesk/gridkit/internal/util"
)

// DefaultGridFile is read when no --config flag is given.
const DefaultGridFile = "grid.toml"

// GridConfig represents a grid.toml file: where rows come from and how
// the columns look.
type GridConfig struct {
	Source  SourceConfig   `toml:"source"`
	Columns []ColumnConfig `toml:"columns"`
	View    ViewConfig     `toml:"view"`
}

// SourceConfig names the table behind the grid
type SourceConfig struct {
	Driver    string `toml:"driver"`
	URL       string `toml:"url"`
	Table     string `toml:"table"`
	KeyColumn string `toml:"key_column"`
	Limit     int    `toml:"limit"`
}

// ColumnConfig is one [[columns]] entry
type ColumnConfig struct {
	Key        string `toml:"key"`
	Label      string `toml:"label"`
	Type       string `toml:"type"`
	Sortable   bool   `toml:"sortable"`
	Filterable bool   `toml:"filterable"`
	FilterMode string `toml:"filter_mode"`
	SubRow     bool   `toml:"sub_row"`
	Order      int    `toml:"order"`
	Width      int    `toml:"width"`
	Hidden     bool   `toml:"hidden"`
}

// ViewConfig holds per-grid display settings
type ViewConfig struct {
	Title        string `toml:"title"`
	DefaultWidth int    `toml:"default_width"`
	MinWidth     int    `toml:"min_width"`
	FilterPolicy string `toml:"filter_policy"`
}

// LoadGrid reads and validates a grid definition. GRIDKIT_DATABASE_URL
// overrides [source] url.
func LoadGrid(path string) (*GridConfig, error) {
	cfg := &GridConfig{}

	meta, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, util.ConfigNotFoundError(path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if url := os.Getenv("GRIDKIT_DATABASE_URL"); url != "" {
		cfg.Source.URL = url
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var validTypes = map[string]bool{
	"":              true,
	grid.TypeString: true,
	grid.TypeNumber: true,
	grid.TypeDate:   true,
	grid.TypeBool:   true,
}

// Validate checks the column set for mistakes the engine would
// otherwise silently accept.
func (c *GridConfig) Validate() error {
	if len(c.Columns) == 0 {
		return util.ErrNoColumns
	}
	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Key == "" {
			return fmt.Errorf("column %d has no key", i+1)
		}
		if seen[col.Key] {
			return fmt.Errorf("duplicate column key %q", col.Key)
		}
		seen[col.Key] = true
		if !validTypes[col.Type] {
			return fmt.Errorf("column %q: unknown type %q", col.Key, col.Type)
		}
		switch grid.FilterMode(col.FilterMode) {
		case "", grid.FilterLocal, grid.FilterServer:
		default:
			return fmt.Errorf("column %q: unknown filter_mode %q", col.Key, col.FilterMode)
		}
		if col.Width < 0 {
			return fmt.Errorf("column %q: negative width", col.Key)
		}
	}
	if _, err := ParseFilterPolicy(c.View.FilterPolicy); err != nil {
		return err
	}
	return nil
}

// ColumnKeys returns the configured keys in file order.
func (c *GridConfig) ColumnKeys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// GridColumns converts the entries to engine descriptors. Columns with no
// width get the view default, falling back to global.
func (c *GridConfig) GridColumns(global *GlobalConfig) []grid.Column {
	width := c.View.DefaultWidth
	if width == 0 && global != nil {
		width = global.View.DefaultWidth
	}

	out := make([]grid.Column, len(c.Columns))
	for i, col := range c.Columns {
		w := col.Width
		if w == 0 {
			w = width
		}
		order := col.Order
		if order == 0 {
			order = i + 1
		}
		out[i] = grid.Column{
			Key:        col.Key,
			Label:      col.Label,
			Type:       col.Type,
			Sortable:   col.Sortable,
			Filterable: col.Filterable,
			FilterMode: grid.FilterMode(col.FilterMode),
			SubRow:     col.SubRow,
			Hidden:     col.Hidden,
			Order:      order,
			Width:      w,
		}
	}
	return out
}

// Query returns the base fetch for the grid. The key column is selected
// even when it is not displayed.
func (c *GridConfig) Query(global *GlobalConfig) source.Query {
	cols := c.ColumnKeys()
	if k := c.Source.KeyColumn; k != "" && !containsKey(cols, k) {
		cols = append(cols, k)
	}
	limit := c.Source.Limit
	if limit == 0 && global != nil {
		limit = global.Source.Limit
	}
	return source.Query{Table: c.Source.Table, Columns: cols, Limit: limit}
}

// Policy resolves the filter policy, the grid file winning over global.
func (c *GridConfig) Policy(global *GlobalConfig) grid.FilterPolicy {
	name := c.View.FilterPolicy
	if name == "" && global != nil {
		name = global.Filter.Policy
	}
	p, _ := ParseFilterPolicy(name)
	return p
}

// ParseFilterPolicy maps a config value to a policy. Empty means the
// default, latest_issued.
func ParseFilterPolicy(name string) (grid.FilterPolicy, error) {
	switch name {
	case "", "latest_issued":
		return grid.LatestIssuedWins, nil
	case "last_settled":
		return grid.LastSettledWins, nil
	default:
		return grid.LatestIssuedWins, fmt.Errorf("unknown filter policy %q (want latest_issued or last_settled)", name)
	}
}

func containsKey(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}
