package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// GlobalConfig represents user-wide gridkit settings stored in the user's
// config directory. A grid.toml value wins over the matching default here.
type GlobalConfig struct {
	View   GlobalViewConfig `toml:"view"`
	Filter FilterConfig     `toml:"filter"`
	Source SourceDefaults   `toml:"source"`
}

// GlobalViewConfig contains display defaults
type GlobalViewConfig struct {
	DefaultWidth int `toml:"default_width" config:"view.default_width" default:"20" min:"3" max:"200" desc:"Width of columns that set none"`
	MinWidth     int `toml:"min_width" config:"view.min_width" default:"3" min:"1" max:"50" desc:"Narrowest width the TUI draws"`
	ResizeStep   int `toml:"resize_step" config:"view.resize_step" default:"2" min:"1" max:"20" desc:"Cells per < or > keypress"`
}

// FilterConfig contains filter defaults
type FilterConfig struct {
	Policy  string `toml:"policy" config:"filter.policy" default:"latest_issued" enum:"latest_issued,last_settled" desc:"Which overlapping server filter commits"`
	Timeout int    `toml:"timeout" config:"filter.timeout" default:"30" min:"1" max:"600" desc:"Seconds before a server filter is abandoned"`
}

// SourceDefaults contains data source defaults
type SourceDefaults struct {
	URL   string `toml:"url" config:"source.url" desc:"Source URL when grid.toml has none"`
	Limit int    `toml:"limit" config:"source.limit" default:"1000" min:"1" max:"1000000" desc:"Row cap per fetch"`
}

// DefaultGlobalConfig returns a new global config with default values
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		View: GlobalViewConfig{
			DefaultWidth: 20,
			MinWidth:     3,
			ResizeStep:   2,
		},
		Filter: FilterConfig{
			Policy:  "latest_issued",
			Timeout: 30,
		},
		Source: SourceDefaults{
			Limit: 1000,
		},
	}
}

// GlobalConfigPath returns the path to the global config file
// Follows XDG Base Directory spec on Linux, platform conventions elsewhere
func GlobalConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support", "gridkit")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "gridkit")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "gridkit")
		} else {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config", "gridkit")
		}
	}

	return filepath.Join(configDir, "config.toml")
}

// LoadGlobal reads the global config file, falling back to defaults for
// a missing file or missing values
func LoadGlobal() (*GlobalConfig, error) {
	configPath := GlobalConfigPath()

	cfg := DefaultGlobalConfig()
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, err
		}
	}

	defaults := DefaultGlobalConfig()
	if cfg.View.DefaultWidth == 0 {
		cfg.View.DefaultWidth = defaults.View.DefaultWidth
	}
	if cfg.View.MinWidth == 0 {
		cfg.View.MinWidth = defaults.View.MinWidth
	}
	if cfg.View.ResizeStep == 0 {
		cfg.View.ResizeStep = defaults.View.ResizeStep
	}
	if cfg.Filter.Policy == "" {
		cfg.Filter.Policy = defaults.Filter.Policy
	}
	if cfg.Filter.Timeout == 0 {
		cfg.Filter.Timeout = defaults.Filter.Timeout
	}
	if cfg.Source.Limit == 0 {
		cfg.Source.Limit = defaults.Source.Limit
	}

	return cfg, nil
}

// Save writes the global config file
func (c *GlobalConfig) Save() error {
	configPath := GlobalConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// GetValue returns a global config value by key (uses reflection)
func (c *GlobalConfig) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a global config value by key (uses reflection with validation)
func (c *GlobalConfig) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}
