// Package prefs reads viewport-independent user settings. The window manager
// core consumes these read-only; nothing here is ever written back by the
// core.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Preferences holds the user settings the core consults.
type Preferences struct {
	// ReducedMotion suppresses transition animation hints on committed
	// drag/resize and snap events.
	ReducedMotion bool `yaml:"reduced_motion"`
	// Theme is passed through to the front end untouched.
	Theme string `yaml:"theme"`
}

// Store supplies the current preferences.
type Store interface {
	Current() Preferences
}

// Static is a fixed, in-memory preferences store.
type Static struct {
	Prefs Preferences
}

// Current implements Store.
func (s Static) Current() Preferences { return s.Prefs }

// Default returns the default preferences.
func Default() Preferences {
	return Preferences{
		ReducedMotion: false,
		Theme:         "system",
	}
}

// DefaultPath returns the standard preferences file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "glassdesk", "prefs.yaml"), nil
}

// Load reads preferences from path. A missing file yields the defaults; a
// malformed file is an error.
func Load(path string) (Preferences, error) {
	p := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("failed to parse preferences: %w", err)
	}
	return p, nil
}
