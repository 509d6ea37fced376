package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/glassdesk/glassdesk/internal/geometry"
)

// Cascade controls default window placement.
type Cascade struct {
	BaseX int `yaml:"base_x"`
	BaseY int `yaml:"base_y"`
	Step  int `yaml:"step"`
	// Wrap is the number of windows after which the cascade offset returns
	// to the base position.
	Wrap int `yaml:"wrap"`
}

// WindowDefaults controls new-window sizing and resize floors.
type WindowDefaults struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
}

// Shortcuts maps built-in actions to key chords. Chord syntax is
// "key+key+..." over normalized key names ("mod+left", "alt+tab").
type Shortcuts struct {
	StartMenu      string `yaml:"start_menu"`
	CycleWindows   string `yaml:"cycle_windows"`
	SnapLeft       string `yaml:"snap_left"`
	SnapRight      string `yaml:"snap_right"`
	Maximize       string `yaml:"maximize"`
	CloseWindow    string `yaml:"close_window"`
	MinimizeWindow string `yaml:"minimize_window"`
	Fullscreen     string `yaml:"fullscreen"`
}

// ServerConfig configures the HTTP/WebSocket bridge.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config holds the daemon configuration.
type Config struct {
	TaskbarHeight  int            `yaml:"taskbar_height"`
	TitleBarHeight int            `yaml:"titlebar_height"`
	// SnapEdgeTrigger is the width in pixels of the strips along the left,
	// right, and top viewport edges that arm a snap zone during drag.
	SnapEdgeTrigger int `yaml:"snap_edge_trigger"`
	// VisiblePercent is the minimum fraction of a window's width that must
	// stay on-screen during a drag.
	VisiblePercent int            `yaml:"visible_percent"`
	Cascade        Cascade        `yaml:"cascade"`
	Window         WindowDefaults `yaml:"window"`
	Shortcuts      Shortcuts      `yaml:"shortcuts"`
	Server         ServerConfig   `yaml:"server"`
	LogLevel       string         `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		TaskbarHeight:   48,
		TitleBarHeight:  32,
		SnapEdgeTrigger: 16,
		VisiblePercent:  25,
		Cascade: Cascade{
			BaseX: 60,
			BaseY: 60,
			Step:  28,
			Wrap:  10,
		},
		Window: WindowDefaults{
			Width:     800,
			Height:    600,
			MinWidth:  320,
			MinHeight: 240,
		},
		Shortcuts: Shortcuts{
			StartMenu:      "mod",
			CycleWindows:   "alt+tab",
			SnapLeft:       "mod+left",
			SnapRight:      "mod+right",
			Maximize:       "mod+up",
			CloseWindow:    "mod+w",
			MinimizeWindow: "mod+m",
			Fullscreen:     "f11",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8420",
		},
		LogLevel: "info",
	}
}

// Metrics derives the geometry constants from the configuration.
func (c *Config) Metrics() geometry.Metrics {
	return geometry.Metrics{
		TaskbarHeight:  c.TaskbarHeight,
		TitleBarHeight: c.TitleBarHeight,
		EdgeTrigger:    c.SnapEdgeTrigger,
		MinWidth:       c.Window.MinWidth,
		MinHeight:      c.Window.MinHeight,
		VisiblePercent: c.VisiblePercent,
		CascadeBaseX:   c.Cascade.BaseX,
		CascadeBaseY:   c.Cascade.BaseY,
		CascadeStep:    c.Cascade.Step,
		CascadeWrap:    c.Cascade.Wrap,
		DefaultWidth:   c.Window.Width,
		DefaultHeight:  c.Window.Height,
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.TaskbarHeight <= 0 {
		return &ValidationError{Path: "taskbar_height", Err: fmt.Errorf("taskbar_height must be > 0")}
	}
	if c.TitleBarHeight <= 0 {
		return &ValidationError{Path: "titlebar_height", Err: fmt.Errorf("titlebar_height must be > 0")}
	}
	if c.SnapEdgeTrigger <= 0 {
		return &ValidationError{Path: "snap_edge_trigger", Err: fmt.Errorf("snap_edge_trigger must be > 0")}
	}
	if c.VisiblePercent < 1 || c.VisiblePercent > 100 {
		return &ValidationError{Path: "visible_percent", Err: fmt.Errorf("visible_percent must be between 1 and 100")}
	}
	if c.Cascade.Step < 0 {
		return &ValidationError{Path: "cascade.step", Err: fmt.Errorf("step must be >= 0")}
	}
	if c.Cascade.Wrap < 1 {
		return &ValidationError{Path: "cascade.wrap", Err: fmt.Errorf("wrap must be >= 1")}
	}
	if c.Window.MinWidth <= 0 || c.Window.MinHeight <= 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("min_width and min_height must be > 0")}
	}
	if c.Window.Width < c.Window.MinWidth || c.Window.Height < c.Window.MinHeight {
		return &ValidationError{Path: "window", Err: fmt.Errorf("default size must not be below the minimum size")}
	}
	if c.Server.Addr == "" {
		return &ValidationError{Path: "server.addr", Err: fmt.Errorf("addr is required")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	for path, chord := range map[string]string{
		"shortcuts.start_menu":      c.Shortcuts.StartMenu,
		"shortcuts.cycle_windows":   c.Shortcuts.CycleWindows,
		"shortcuts.snap_left":       c.Shortcuts.SnapLeft,
		"shortcuts.snap_right":      c.Shortcuts.SnapRight,
		"shortcuts.maximize":        c.Shortcuts.Maximize,
		"shortcuts.close_window":    c.Shortcuts.CloseWindow,
		"shortcuts.minimize_window": c.Shortcuts.MinimizeWindow,
		"shortcuts.fullscreen":      c.Shortcuts.Fullscreen,
	} {
		if chord == "" {
			return &ValidationError{Path: path, Err: fmt.Errorf("shortcut chord is required")}
		}
	}
	return nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
