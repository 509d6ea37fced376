// Package desktop assembles the window manager: the registry, the drag and
// resize controllers, the focus manager, the shortcut router, and the snap
// overlay, wired to one event bus. It owns the pieces of desktop state that
// sit outside any single window: the viewport, the start menu, and the
// fullscreen flag.
package desktop

import (
	"sync"
	"time"

	"github.com/glassdesk/glassdesk/internal/announce"
	"github.com/glassdesk/glassdesk/internal/config"
	"github.com/glassdesk/glassdesk/internal/drag"
	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/focusnav"
	"github.com/glassdesk/glassdesk/internal/frame"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/overlay"
	"github.com/glassdesk/glassdesk/internal/prefs"
	"github.com/glassdesk/glassdesk/internal/registry"
	"github.com/glassdesk/glassdesk/internal/resize"
	"github.com/glassdesk/glassdesk/internal/shortcut"
)

// StartButtonID is the focus id of the taskbar's start button.
const StartButtonID = "start-button"

// Options configures a desktop session. Zero values fall back to defaults:
// the default config, the frame-rate commit cadence, a log announcer.
type Options struct {
	Config    *config.Config
	Prefs     prefs.Store
	Announcer announce.Announcer
	Viewport  geometry.Size
	// FrameInterval throttles drag/resize commits. Negative disables
	// throttling entirely, which tests use for determinism.
	FrameInterval time.Duration
	// ConfirmClose is asked to obtain user confirmation before a window with
	// unsaved state closes. Nil leaves the window open until ConfirmClose or
	// CancelClose is called explicitly.
	ConfirmClose func(windowID string)
}

// State is a renderer-facing snapshot of everything outside window records.
type State struct {
	Windows       []registry.Window `json:"windows"`
	ZOrder        []string          `json:"z_order"`
	Viewport      geometry.Size     `json:"viewport"`
	StartMenuOpen bool              `json:"start_menu_open"`
	Fullscreen    bool              `json:"fullscreen"`
	Overlay       overlay.State     `json:"overlay"`
}

// Desktop is the composition root for one simulated desktop.
type Desktop struct {
	cfg config.Config
	bus *eventbus.Bus
	reg *registry.Registry

	drag    *drag.Controller
	resize  *resize.Controller
	focus   *focusnav.Manager
	router  *shortcut.Router
	overlay *overlay.Presenter

	confirmClose func(string)

	mu           sync.Mutex
	viewport     geometry.Size
	menuOpen     bool
	fullscreen   bool
	pendingClose map[string]bool
}

// New wires up a desktop session. It never fails; invalid options degrade to
// defaults.
func New(opts Options) *Desktop {
	cfg := *config.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	vp := opts.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = geometry.Size{Width: 1280, Height: 720}
	}
	interval := opts.FrameInterval
	if interval == 0 {
		interval = frame.DefaultInterval
	}

	d := &Desktop{
		cfg:          cfg,
		bus:          eventbus.New(),
		viewport:     vp,
		confirmClose: opts.ConfirmClose,
		pendingClose: make(map[string]bool),
	}

	ann := opts.Announcer
	if ann == nil {
		ann = announce.NewBus(d.bus)
	}
	d.reg = registry.New(cfg.Metrics(), d.bus, ann)

	d.drag = drag.New(d.reg, d.bus, d.Viewport, interval)
	if opts.Prefs != nil {
		d.drag.SetPreferences(opts.Prefs)
	}
	d.resize = resize.New(d.reg, d.bus, d.Viewport, interval)
	d.focus = focusnav.New(focusnav.Options{
		Registry:      d.reg,
		MenuOpen:      d.StartMenuOpen,
		CloseMenu:     d.CloseStartMenu,
		StartButtonID: StartButtonID,
		RowTolerance:  iconRowTolerance,
	})
	d.overlay = overlay.New(d.bus, d.Viewport, d.reg.Metrics, nil)

	d.router = shortcut.NewRouter(d.context)
	d.router.SetBuiltins(shortcut.Builtins(cfg.Shortcuts, shortcut.Actions{
		Registry:         d.reg,
		Viewport:         d.Viewport,
		ToggleStartMenu:  d.ToggleStartMenu,
		ToggleFullscreen: d.ToggleFullscreen,
		RequestClose:     d.RequestClose,
	}))

	return d
}

const iconRowTolerance = 8

// Accessors. Renderers and transports reach the subsystems through these
// rather than holding their own references.

func (d *Desktop) Bus() *eventbus.Bus           { return d.bus }
func (d *Desktop) Registry() *registry.Registry { return d.reg }
func (d *Desktop) Drag() *drag.Controller       { return d.drag }
func (d *Desktop) Resize() *resize.Controller   { return d.resize }
func (d *Desktop) Focus() *focusnav.Manager     { return d.focus }
func (d *Desktop) Router() *shortcut.Router     { return d.router }
func (d *Desktop) Overlay() *overlay.Presenter  { return d.overlay }
func (d *Desktop) Config() config.Config        { return d.cfg }

// Viewport returns the current desktop size.
func (d *Desktop) Viewport() geometry.Size {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewport
}

// SetViewport resizes the desktop. Snapped and maximized windows are laid
// out again against the new size; free windows are clamped back into reach.
func (d *Desktop) SetViewport(size geometry.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	d.mu.Lock()
	if size == d.viewport {
		d.mu.Unlock()
		return
	}
	d.viewport = size
	d.mu.Unlock()

	m := d.reg.Metrics()
	for _, win := range d.reg.Snapshot() {
		switch {
		case win.Maximized:
			d.reg.SnapTo(win.ID, registry.SnapMaximized, geometry.SnapTarget(geometry.ZoneMaximize, size, m))
		case win.SnapState == registry.SnapLeft:
			d.reg.SnapTo(win.ID, registry.SnapLeft, geometry.SnapTarget(geometry.ZoneLeft, size, m))
		case win.SnapState == registry.SnapRight:
			d.reg.SnapTo(win.ID, registry.SnapRight, geometry.SnapTarget(geometry.ZoneRight, size, m))
		default:
			clamped := geometry.ClampDrag(win.Bounds, size, m)
			if clamped != win.Bounds {
				d.reg.UpdateBounds(win.ID, registry.Patch(clamped))
			}
		}
	}

	d.bus.Publish(eventbus.Event{Type: eventbus.ViewportResized, Data: size})
}

// Start menu state.

func (d *Desktop) StartMenuOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.menuOpen
}

func (d *Desktop) OpenStartMenu() {
	d.mu.Lock()
	if d.menuOpen {
		d.mu.Unlock()
		return
	}
	d.menuOpen = true
	d.mu.Unlock()
	d.bus.Publish(eventbus.Event{Type: eventbus.StartMenuOpened})
}

func (d *Desktop) CloseStartMenu() {
	d.mu.Lock()
	if !d.menuOpen {
		d.mu.Unlock()
		return
	}
	d.menuOpen = false
	d.mu.Unlock()
	d.bus.Publish(eventbus.Event{Type: eventbus.StartMenuClosed})
}

func (d *Desktop) ToggleStartMenu() {
	if d.StartMenuOpen() {
		d.CloseStartMenu()
	} else {
		d.OpenStartMenu()
	}
}

// Fullscreen state. This is browser fullscreen for the whole desktop, not a
// per-window mode.

func (d *Desktop) Fullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

func (d *Desktop) ToggleFullscreen() {
	d.mu.Lock()
	d.fullscreen = !d.fullscreen
	d.mu.Unlock()
}

// RequestClose closes the window unless it holds unsaved state, in which
// case the close parks as pending and the confirmation hook runs. A second
// request for the same window while pending is a no-op.
func (d *Desktop) RequestClose(windowID string) {
	win, ok := d.reg.Get(windowID)
	if !ok {
		return
	}
	if !win.HasUnsavedState {
		d.reg.Close(windowID, false)
		return
	}

	d.mu.Lock()
	already := d.pendingClose[windowID]
	d.pendingClose[windowID] = true
	d.mu.Unlock()

	if !already && d.confirmClose != nil {
		d.confirmClose(windowID)
	}
}

// ConfirmClose resolves a pending close request by force-closing the window.
func (d *Desktop) ConfirmClose(windowID string) {
	d.mu.Lock()
	pending := d.pendingClose[windowID]
	delete(d.pendingClose, windowID)
	d.mu.Unlock()
	if pending {
		d.reg.Close(windowID, true)
	}
}

// CancelClose abandons a pending close request, leaving the window open.
func (d *Desktop) CancelClose(windowID string) {
	d.mu.Lock()
	delete(d.pendingClose, windowID)
	d.mu.Unlock()
}

// ClosePending reports whether the window has a close awaiting confirmation.
func (d *Desktop) ClosePending(windowID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingClose[windowID]
}

// AppHooks returns the callbacks handed to a hosted application so it can
// drive its window's registry fields without touching the registry itself.
func (d *Desktop) AppHooks(windowID string) (onTitleChange func(string), onUnsavedStateChange func(bool)) {
	return func(title string) {
			d.reg.UpdateTitle(windowID, title)
		}, func(unsaved bool) {
			d.reg.UpdateUnsavedState(windowID, unsaved)
			if !unsaved {
				// A save while a close was pending no longer needs the prompt.
				d.CancelClose(windowID)
			}
		}
}

// KeyDown routes a key press: cancellation and tab navigation are handled
// before the shortcut router sees the key. It reports whether the event's
// default behavior should be suppressed.
func (d *Desktop) KeyDown(raw string) bool {
	key := shortcut.Normalize(raw)

	switch key {
	case "esc":
		if _, active := d.drag.Active(); active {
			d.drag.Cancel()
			return true
		}
		if _, active := d.resize.Active(); active {
			d.resize.Cancel()
			return true
		}
		if d.focus.HandleEscape() {
			return true
		}
	case "tab":
		if !d.router.IsPressed("alt") {
			d.focus.HandleTab(d.router.IsPressed("shift"))
			d.router.KeyDown(raw)
			return true
		}
	}

	return d.router.KeyDown(raw)
}

// KeyUp routes a key release.
func (d *Desktop) KeyUp(raw string) {
	d.router.KeyUp(raw)
}

// Blur clears transient input state when the hosting document loses focus.
func (d *Desktop) Blur() {
	d.router.Blur()
}

// Snapshot captures the full desktop state for transports and renderers.
func (d *Desktop) Snapshot() State {
	d.mu.Lock()
	vp, menu, full := d.viewport, d.menuOpen, d.fullscreen
	d.mu.Unlock()

	return State{
		Windows:       d.reg.Snapshot(),
		ZOrder:        d.reg.ZOrder(),
		Viewport:      vp,
		StartMenuOpen: menu,
		Fullscreen:    full,
		Overlay:       d.overlay.State(),
	}
}

// context names the active shortcut context for the router.
func (d *Desktop) context() string {
	if d.StartMenuOpen() {
		return "start-menu"
	}
	return "desktop"
}
