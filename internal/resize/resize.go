// Package resize implements pointer-driven window resizing from the eight
// compass handles. Edits are anchored on the opposite edge, floored at the
// minimum window size, and committed on the shared frame cadence.
package resize

import (
	"fmt"
	"sync"
	"time"

	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/frame"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
)

// Handle names the edge or corner being dragged.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

func (h Handle) valid() bool {
	switch h {
	case HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW:
		return true
	}
	return false
}

func (h Handle) north() bool { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) south() bool { return h == HandleS || h == HandleSE || h == HandleSW }
func (h Handle) east() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) west() bool  { return h == HandleW || h == HandleNW || h == HandleSW }

type session struct {
	windowID    string
	handle      Handle
	startBounds geometry.Rect
	startX      int
	startY      int
}

// Controller serializes resize sessions: at most one window resizes at a time.
type Controller struct {
	reg      *registry.Registry
	bus      *eventbus.Bus
	viewport func() geometry.Size

	mu      sync.Mutex
	co      *frame.Coalescer
	active  *session
	pending geometry.Rect
}

// New builds a resize controller. viewport must return the current desktop
// size and is consulted on every update, never cached. interval sets the
// commit cadence; zero or negative commits every update synchronously.
func New(reg *registry.Registry, bus *eventbus.Bus, viewport func() geometry.Size, interval time.Duration) *Controller {
	c := &Controller{reg: reg, bus: bus, viewport: viewport}
	c.co = frame.New(interval, c.commit)
	return c
}

// Begin starts a resize from the given handle. Maximized windows have no
// handles, so a begin on one is rejected.
func (c *Controller) Begin(windowID string, handle Handle, pointerX, pointerY int) error {
	if !handle.valid() {
		return fmt.Errorf("resize begin: unknown handle %q", handle)
	}
	win, ok := c.reg.Get(windowID)
	if !ok {
		return fmt.Errorf("resize begin: unknown window %q", windowID)
	}
	if win.Maximized {
		return fmt.Errorf("resize begin: window %q is maximized", windowID)
	}

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return fmt.Errorf("resize begin: session already active for %q", c.active.windowID)
	}
	c.active = &session{
		windowID:    windowID,
		handle:      handle,
		startBounds: win.Bounds,
		startX:      pointerX,
		startY:      pointerY,
	}
	c.pending = win.Bounds
	c.mu.Unlock()

	c.reg.Focus(windowID)
	c.bus.Publish(eventbus.Event{Type: eventbus.ResizeStarted, WindowID: windowID})
	return nil
}

// Update applies the pointer delta to the edges the handle owns. An edge
// pushed past the minimum size stops there; the opposite edge never moves. A
// moving edge stops at the screen edge, so no resize can push a window
// off-screen.
func (c *Controller) Update(pointerX, pointerY int) {
	m := c.reg.Metrics()
	vp := c.viewport()

	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	c.pending = apply(s, pointerX-s.startX, pointerY-s.startY, vp, m)
	c.mu.Unlock()

	c.co.Request()
}

// End commits the final size and closes the session.
func (c *Controller) End() {
	c.co.Flush()

	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.mu.Unlock()

	c.bus.Publish(eventbus.Event{Type: eventbus.ResizeEnded, WindowID: s.windowID})
}

// Cancel aborts the resize and restores the exact bounds from Begin.
func (c *Controller) Cancel() {
	c.co.Stop()

	c.mu.Lock()
	s := c.active
	if s == nil {
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.mu.Unlock()

	c.reg.UpdateBounds(s.windowID, registry.Patch(s.startBounds))
	c.bus.Publish(eventbus.Event{Type: eventbus.ResizeCancelled, WindowID: s.windowID})
}

// Active reports the window being resized, if any.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.windowID, true
}

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

// apply computes the candidate bounds for a pointer delta. Each moving edge
// is clamped independently so corner handles floor one axis without
// disturbing the other. Per edge, the screen clamp runs first, then the
// minimum size floor; the floor wins when both constrain the same edge.
func apply(s *session, dx, dy int, viewport geometry.Size, m geometry.Metrics) geometry.Rect {
	b := s.startBounds
	usable := geometry.Usable(viewport, m)

	if s.handle.east() {
		b.Width = s.startBounds.Width + dx
		if b.X+b.Width > usable.Right() {
			b.Width = usable.Right() - b.X
		}
		if b.Width < m.MinWidth {
			b.Width = m.MinWidth
		}
	}
	if s.handle.west() {
		b.X = s.startBounds.X + dx
		b.Width = s.startBounds.Width - dx
		if b.X < usable.X {
			b.X = usable.X
			b.Width = s.startBounds.Right() - b.X
		}
		if b.Width < m.MinWidth {
			b.X = s.startBounds.Right() - m.MinWidth
			b.Width = m.MinWidth
		}
	}
	if s.handle.south() {
		b.Height = s.startBounds.Height + dy
		if b.Y+b.Height > usable.Bottom() {
			b.Height = usable.Bottom() - b.Y
		}
		if b.Height < m.MinHeight {
			b.Height = m.MinHeight
		}
	}
	if s.handle.north() {
		b.Y = s.startBounds.Y + dy
		b.Height = s.startBounds.Height - dy
		if b.Y < usable.Y {
			b.Y = usable.Y
			b.Height = s.startBounds.Bottom() - b.Y
		}
		if b.Height < m.MinHeight {
			b.Y = s.startBounds.Bottom() - m.MinHeight
			b.Height = m.MinHeight
		}
	}

	return b
}
