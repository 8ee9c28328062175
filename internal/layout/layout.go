// Package layout persists grid layouts between sessions, either as YAML
// files under the user config directory or as compact paste-able tokens.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/freightdesk/gridkit/internal/grid"
	"github.com/freightdesk/gridkit/internal/util"
)

// Store reads and writes named layouts in one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir is $XDG_CONFIG_HOME/gridkit/layouts or its platform
// equivalent.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gridkit", "layouts")
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// ValidName reports whether name is usable as a layout file name.
func ValidName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' || c == '.' {
			continue
		}
		return false
	}
	return !strings.HasPrefix(name, ".")
}

// Path returns the file backing name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// Save writes l under name, replacing any previous layout.
func (s *Store) Save(name string, l grid.Layout) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid layout name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create layout dir: %w", err)
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(name), data, 0o644)
}

// Load reads the layout saved under name.
func (s *Store) Load(name string) (grid.Layout, error) {
	var l grid.Layout
	if !ValidName(name) {
		return l, fmt.Errorf("invalid layout name %q", name)
	}
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return l, fmt.Errorf("%w: %s", util.ErrLayoutNotFound, name)
	}
	if err != nil {
		return l, err
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("parse layout %s: %w", name, err)
	}
	return l, nil
}

// Delete removes the layout saved under name.
func (s *Store) Delete(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid layout name %q", name)
	}
	err := os.Remove(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", util.ErrLayoutNotFound, name)
	}
	return err
}

// List returns the saved layout names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}
