package shortcut

import (
	"github.com/glassdesk/glassdesk/internal/config"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
)

// Actions carries the hooks the built-in system shortcuts operate through.
// RequestClose is confirmation-aware: it must route through whatever UI asks
// about unsaved state instead of force-closing.
type Actions struct {
	Registry         *registry.Registry
	Viewport         func() geometry.Size
	ToggleStartMenu  func()
	ToggleFullscreen func()
	RequestClose     func(windowID string)
}

// Builtins derives the system shortcut set from the configured chords.
func Builtins(cfg config.Shortcuts, a Actions) []Shortcut {
	return []Shortcut{
		{
			ID:             "start-menu",
			Keys:           ParseChord(cfg.StartMenu),
			Global:         true,
			PreventDefault: true,
			Action: func() error {
				if a.ToggleStartMenu != nil {
					a.ToggleStartMenu()
				}
				return nil
			},
		},
		{
			ID:             "cycle-windows",
			Keys:           ParseChord(cfg.CycleWindows),
			Global:         true,
			PreventDefault: true,
			Action:         func() error { Cycle(a.Registry); return nil },
		},
		{
			ID:             "snap-left",
			Keys:           ParseChord(cfg.SnapLeft),
			Global:         true,
			PreventDefault: true,
			Action:         func() error { snapFocused(a, registry.SnapLeft, geometry.ZoneLeft); return nil },
		},
		{
			ID:             "snap-right",
			Keys:           ParseChord(cfg.SnapRight),
			Global:         true,
			PreventDefault: true,
			Action:         func() error { snapFocused(a, registry.SnapRight, geometry.ZoneRight); return nil },
		},
		{
			ID:             "maximize",
			Keys:           ParseChord(cfg.Maximize),
			Global:         true,
			PreventDefault: true,
			Action: func() error {
				if win, ok := a.Registry.Focused(); ok {
					a.Registry.Maximize(win.ID)
				}
				return nil
			},
		},
		{
			ID:             "close-window",
			Keys:           ParseChord(cfg.CloseWindow),
			Global:         true,
			PreventDefault: true,
			Action: func() error {
				if win, ok := a.Registry.Focused(); ok && a.RequestClose != nil {
					a.RequestClose(win.ID)
				}
				return nil
			},
		},
		{
			ID:             "minimize-window",
			Keys:           ParseChord(cfg.MinimizeWindow),
			Global:         true,
			PreventDefault: true,
			Action: func() error {
				if win, ok := a.Registry.Focused(); ok {
					a.Registry.Minimize(win.ID)
				}
				return nil
			},
		},
		{
			ID:             "fullscreen",
			Keys:           ParseChord(cfg.Fullscreen),
			Global:         true,
			PreventDefault: true,
			Action: func() error {
				if a.ToggleFullscreen != nil {
					a.ToggleFullscreen()
				}
				return nil
			},
		},
	}
}

// Cycle advances focus through the visible windows: the window at the bottom
// of the visible stack comes to the front, so repeated presses rotate the
// whole set. Fewer than two visible windows is a no-op. The IPC and MCP
// surfaces share this with the Alt+Tab binding.
func Cycle(reg *registry.Registry) {
	if reg == nil {
		return
	}
	var visible []string
	for _, id := range reg.ZOrder() {
		if win, ok := reg.Get(id); ok && win.Visible() {
			visible = append(visible, id)
		}
	}
	if len(visible) < 2 {
		return
	}
	reg.Focus(visible[0])
}

func snapFocused(a Actions, state registry.SnapState, zone geometry.Zone) {
	win, ok := a.Registry.Focused()
	if !ok {
		return
	}
	target := geometry.SnapTarget(zone, a.Viewport(), a.Registry.Metrics())
	a.Registry.SnapTo(win.ID, state, target)
}
