// Package drag owns the pointer-driven move lifecycle for windows: begin on
// title-bar press, clamped position updates coalesced to the frame cadence,
// edge-snap detection while the pointer moves, and commit or rollback on
// release.
package drag

import (
	"fmt"
	"sync"
	"time"

	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/frame"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/prefs"
	"github.com/glassdesk/glassdesk/internal/registry"
)

// Moved is the payload broadcast with every coalesced drag update. Zone is
// the snap zone the pointer currently occupies, ZoneNone when free-dragging.
// Animate is false when the user prefers reduced motion; renderers then skip
// transition effects on the preview.
type Moved struct {
	Bounds  geometry.Rect `json:"bounds"`
	Zone    geometry.Zone `json:"zone"`
	Animate bool          `json:"animate"`
}

// session tracks one in-flight drag. startBounds is the exact rectangle to
// restore on cancel; the offset keeps the grab point fixed under the pointer.
type session struct {
	windowID    string
	startBounds geometry.Rect
	startSnap   registry.SnapState
	offsetX     int
	offsetY     int
}

// Controller serializes drag sessions: at most one window moves at a time.
type Controller struct {
	reg      *registry.Registry
	bus      *eventbus.Bus
	viewport func() geometry.Size
	prefs    prefs.Store

	mu      sync.Mutex
	co      *frame.Coalescer
	active  *session
	pending geometry.Rect
	zone    geometry.Zone
}

// New builds a drag controller. viewport must return the current desktop size
// so clamping and zone detection track live resizes. interval sets the commit
// cadence; zero or negative commits every update synchronously.
func New(reg *registry.Registry, bus *eventbus.Bus, viewport func() geometry.Size, interval time.Duration) *Controller {
	c := &Controller{
		reg:      reg,
		bus:      bus,
		viewport: viewport,
	}
	c.co = frame.New(interval, c.commit)
	return c
}

// SetPreferences attaches a preferences store so drag broadcasts can carry
// the reduced-motion hint. A nil store means animation stays on.
func (c *Controller) SetPreferences(p prefs.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs = p
}

func (c *Controller) animateLocked() bool {
	return c.prefs == nil || !c.prefs.Current().ReducedMotion
}

// Begin starts a drag for the given window from the pointer position.
// Maximized windows do not drag; the caller restores them first if the UI
// wants tear-off behavior.
func (c *Controller) Begin(windowID string, pointerX, pointerY int) error {
	win, ok := c.reg.Get(windowID)
	if !ok {
		return fmt.Errorf("drag begin: unknown window %q", windowID)
	}
	if win.Maximized {
		return fmt.Errorf("drag begin: window %q is maximized", windowID)
	}

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return fmt.Errorf("drag begin: session already active for %q", c.active.windowID)
	}
	c.active = &session{
		windowID:    windowID,
		startBounds: win.Bounds,
		startSnap:   win.SnapState,
		offsetX:     pointerX - win.Bounds.X,
		offsetY:     pointerY - win.Bounds.Y,
	}
	c.pending = win.Bounds
	c.zone = geometry.ZoneNone
	c.mu.Unlock()

	c.reg.Focus(windowID)
	c.bus.Publish(eventbus.Event{Type: eventbus.DragStarted, WindowID: windowID})
	return nil
}

// Update records the new pointer position. The clamped bounds are staged
// immediately so End and Cancel always see the latest position; the registry
// commit itself rides the coalescer.
func (c *Controller) Update(pointerX, pointerY int) {
	vp := c.viewport()
	m := c.reg.Metrics()

	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	raw := geometry.Rect{
		X:      pointerX - s.offsetX,
		Y:      pointerY - s.offsetY,
		Width:  s.startBounds.Width,
		Height: s.startBounds.Height,
	}
	c.pending = geometry.ClampDrag(raw, vp, m)
	c.zone = geometry.DetectZone(pointerX, pointerY, vp, m)
	id, payload := s.windowID, Moved{Bounds: c.pending, Zone: c.zone, Animate: c.animateLocked()}
	c.mu.Unlock()

	c.co.Request()
	c.bus.Publish(eventbus.Event{Type: eventbus.DragMoved, WindowID: id, Data: payload})
}

// End finishes the drag. A release inside a snap zone commits the zone's
// target rectangle; a free release commits the last clamped position and
// clears any stale snap state from before the drag.
func (c *Controller) End() {
	c.co.Flush()

	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	zone := c.zone
	c.active = nil
	c.zone = geometry.ZoneNone
	c.mu.Unlock()

	if zone != geometry.ZoneNone {
		target := geometry.SnapTarget(zone, c.viewport(), c.reg.Metrics())
		c.reg.SnapTo(s.windowID, snapStateFor(zone), target)
	} else if s.startSnap != registry.SnapNone {
		c.reg.UpdateSnapState(s.windowID, registry.SnapNone)
	}
	c.bus.Publish(eventbus.Event{Type: eventbus.DragEnded, WindowID: s.windowID})
}

// Cancel aborts the drag and restores the exact bounds from Begin. Snap state
// is left untouched so an aborted drag is indistinguishable from no drag.
func (c *Controller) Cancel() {
	c.co.Stop()

	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.zone = geometry.ZoneNone
	c.mu.Unlock()

	c.reg.UpdateBounds(s.windowID, registry.Patch(s.startBounds))
	c.bus.Publish(eventbus.Event{Type: eventbus.DragCancelled, WindowID: s.windowID})
}

// Active reports the window being dragged, if any.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.windowID, true
}

// Zone reports the snap zone under the pointer for the current session.
func (c *Controller) Zone() geometry.Zone {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zone
}

// commit writes the staged bounds to the registry. It runs from the coalescer
// and takes only a snapshot under the lock, so registry event handlers can
// call back into the controller without deadlocking.
func (c *Controller) commit() {
	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	id, bounds := s.windowID, c.pending
	c.mu.Unlock()

	c.reg.UpdateBounds(id, registry.Patch(bounds))
}

func snapStateFor(zone geometry.Zone) registry.SnapState {
	switch zone {
	case geometry.ZoneLeft:
		return registry.SnapLeft
	case geometry.ZoneRight:
		return registry.SnapRight
	case geometry.ZoneMaximize:
		return registry.SnapMaximized
	default:
		return registry.SnapNone
	}
}
