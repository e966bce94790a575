// Package prefs persists listfeed UI preferences in
// ~/.config/listfeed/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/listfeed/listfeed/internal/config"
)

// Prefs holds the settings the UI remembers between runs.
type Prefs struct {
	Theme string `toml:"theme"`
	Tab   string `toml:"tab"`
}

const (
	defaultPrefsPath = "~/.config/listfeed/prefs.toml"
	defaultTheme     = "Dracula"
	defaultTab       = "users"
)

// Default returns the preferences used on first run.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, Tab: defaultTab}
}

// Load reads preferences from path, or the default location when path is
// empty. Any problem yields defaults; preferences never block startup.
func Load(path string) Prefs {
	p := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return p
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return p
	}

	var raw Prefs
	if err := toml.Unmarshal(data, &raw); err != nil {
		return p
	}
	if v := strings.TrimSpace(raw.Theme); v != "" {
		p.Theme = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Tab)); v != "" {
		p.Tab = v
	}
	return p
}

// Save writes p to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
