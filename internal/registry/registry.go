// Package registry owns all window lifecycle state: the window map, the
// back-to-front z-order list, and every transition between window states.
// All mutations go through its operations; nothing outside the package
// touches a record directly, which is what preserves the "at most one
// focused window" and "z-order matches window map" invariants.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/glassdesk/glassdesk/internal/announce"
	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/geometry"
)

// Registry is the authoritative window store. Safe for concurrent use; every
// public operation applies atomically.
//
// Operating on an unknown id is always a silent no-op: ids are generated
// internally, so "not found" is inert, not exceptional.
type Registry struct {
	mu        sync.Mutex
	windows   map[string]*Window
	zorder    []string // back-to-front; last entry renders topmost
	created   int      // lifetime create count, drives cascade placement
	metrics   geometry.Metrics
	bus       *eventbus.Bus
	announcer announce.Announcer
}

// New creates an empty registry. bus and announcer may be nil.
func New(metrics geometry.Metrics, bus *eventbus.Bus, announcer announce.Announcer) *Registry {
	if announcer == nil {
		announcer = announce.Nop{}
	}
	return &Registry{
		windows:   make(map[string]*Window),
		metrics:   metrics,
		bus:       bus,
		announcer: announcer,
	}
}

// Create allocates a new focused window for the given app and returns its id.
// When no bounds are supplied the window is placed by cascade: a fixed base
// offset, stepped diagonally per window, wrapping back to the base after a
// fixed count. Never fails.
func (r *Registry) Create(appID string, opts CreateOptions) string {
	r.mu.Lock()

	id := uuid.NewString()

	bounds := geometry.DefaultBounds(r.created, r.metrics)
	if opts.Bounds != nil {
		bounds = geometry.ClampSize(*opts.Bounds, r.metrics)
	}
	r.created++

	title := opts.Title
	if title == "" {
		title = appID
	}

	r.unfocusAllLocked()
	win := &Window{
		ID:        id,
		AppID:     appID,
		Title:     title,
		Bounds:    bounds,
		SnapState: SnapNone,
		Focused:   true,
	}
	r.windows[id] = win
	r.zorder = append(r.zorder, id)
	r.reindexLocked()

	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowCreated, WindowID: id})
	r.announcer.Announce(fmt.Sprintf("Window %s opened", title), announce.PriorityNormal)
	return id
}

// Close removes a window. When the window holds unsaved state and force is
// false the call does nothing and returns false so the caller can obtain
// confirmation and retry. Returns true when the window was removed.
func (r *Registry) Close(id string, force bool) bool {
	r.mu.Lock()

	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if win.HasUnsavedState && !force {
		r.mu.Unlock()
		return false
	}

	title := win.Title
	wasFocused := win.Focused

	delete(r.windows, id)
	r.zorder = removeID(r.zorder, id)

	if wasFocused {
		r.focusTopmostLocked()
	}
	r.reindexLocked()

	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowClosed, WindowID: id})
	r.announcer.Announce(fmt.Sprintf("Window %s closed", title), announce.PriorityNormal)
	return true
}

// Focus makes the window the single focused window, clears its minimized
// flag, raises it to the top of the z-order, and recomputes every window's
// z-index from its list position.
func (r *Registry) Focus(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	r.focusLocked(win)
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowFocused, WindowID: id})
}

// Minimize hides the window. If it was focused, focus transfers to the first
// remaining non-minimized window scanning the z-order from the back, which is
// then raised.
func (r *Registry) Minimize(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	wasFocused := win.Focused
	win.Minimized = true
	win.Focused = false

	var transferred string
	if wasFocused {
		for _, wid := range r.zorder {
			if next := r.windows[wid]; !next.Minimized {
				r.focusLocked(next)
				transferred = wid
				break
			}
		}
	}
	title := win.Title
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowMinimized, WindowID: id})
	if transferred != "" {
		r.publish(eventbus.Event{Type: eventbus.WindowFocused, WindowID: transferred})
	}
	r.announcer.Announce(fmt.Sprintf("Window %s minimized", title), announce.PriorityNormal)
}

// Maximize toggles the maximized state. Stored bounds are never altered: the
// maximized rectangle is derived from the live viewport at render time, so
// toggling twice restores exactly the pre-maximize presentation.
func (r *Registry) Maximize(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	var evType eventbus.Type
	var msg string
	if win.Maximized {
		win.Maximized = false
		win.SnapState = SnapNone
		evType = eventbus.WindowRestored
		msg = fmt.Sprintf("Window %s restored", win.Title)
	} else {
		win.Maximized = true
		win.SnapState = SnapMaximized
		evType = eventbus.WindowMaximized
		msg = fmt.Sprintf("Window %s maximized", win.Title)
	}
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: evType, WindowID: id})
	r.announcer.Announce(msg, announce.PriorityNormal)
}

// Restore returns the window to its normal state (not minimized, not
// maximized, unsnapped) and focuses it.
func (r *Registry) Restore(id string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	win.Minimized = false
	win.Maximized = false
	win.SnapState = SnapNone
	r.focusLocked(win)
	title := win.Title
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowRestored, WindowID: id})
	r.publish(eventbus.Event{Type: eventbus.WindowFocused, WindowID: id})
	r.announcer.Announce(fmt.Sprintf("Window %s restored", title), announce.PriorityNormal)
}

// UpdateBounds shallow-merges a partial bounds update. The minimum size floor
// is enforced on every mutation, so a non-positive rect is unrepresentable.
func (r *Registry) UpdateBounds(id string, patch BoundsPatch) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	win.Bounds = geometry.ClampSize(patch.apply(win.Bounds), r.metrics)
	bounds := win.Bounds
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowMoved, WindowID: id, Data: bounds})
}

// SnapTo commits a snap: the window takes the target rectangle and snap
// state. SnapMaximized additionally sets the maximized flag; left/right clear
// it.
func (r *Registry) SnapTo(id string, state SnapState, target geometry.Rect) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	win.Bounds = geometry.ClampSize(target, r.metrics)
	win.SnapState = state
	win.Maximized = state == SnapMaximized
	title := win.Title
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowSnapped, WindowID: id, Data: state})
	r.announcer.Announce(fmt.Sprintf("Window %s snapped %s", title, state), announce.PriorityNormal)
}

// UpdateSnapState sets the snap state with no side effects on other fields.
func (r *Registry) UpdateSnapState(id string, state SnapState) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	win.SnapState = state
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowSnapped, WindowID: id, Data: state})
}

// UpdateTitle sets the display title.
func (r *Registry) UpdateTitle(id, title string) {
	r.mu.Lock()
	win, ok := r.windows[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	win.Title = title
	r.mu.Unlock()

	r.publish(eventbus.Event{Type: eventbus.WindowTitled, WindowID: id, Data: title})
}

// UpdateUnsavedState records whether the hosted content holds unsaved work.
func (r *Registry) UpdateUnsavedState(id string, unsaved bool) {
	r.mu.Lock()
	if win, ok := r.windows[id]; ok {
		win.HasUnsavedState = unsaved
	}
	r.mu.Unlock()
}

// CloseAll closes every window with the same per-window semantics as Close
// and returns how many were removed. Unsaved windows survive unless force is
// set.
func (r *Registry) CloseAll(force bool) int {
	closed := 0
	for _, id := range r.ZOrder() {
		if r.Close(id, force) {
			closed++
		}
	}
	return closed
}

// MinimizeAll minimizes every visible window.
func (r *Registry) MinimizeAll() {
	for _, win := range r.Visible() {
		r.Minimize(win.ID)
	}
}

// Get returns a copy of the window record.
func (r *Registry) Get(id string) (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	win, ok := r.windows[id]
	if !ok {
		return Window{}, false
	}
	return *win, true
}

// Focused returns the focused window, if any.
func (r *Registry) Focused() (Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, win := range r.windows {
		if win.Focused {
			return *win, true
		}
	}
	return Window{}, false
}

// ByApp returns all windows hosting the given app, back-to-front.
func (r *Registry) ByApp(appID string) []Window {
	return r.filter(func(w *Window) bool { return w.AppID == appID })
}

// Visible returns all non-minimized windows, back-to-front.
func (r *Registry) Visible() []Window {
	return r.filter(func(w *Window) bool { return !w.Minimized })
}

// Minimized returns all minimized windows, back-to-front.
func (r *Registry) Minimized() []Window {
	return r.filter(func(w *Window) bool { return w.Minimized })
}

// HasUnsaved reports whether any window holds unsaved state. Gates app-exit
// confirmation.
func (r *Registry) HasUnsaved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, win := range r.windows {
		if win.HasUnsavedState {
			return true
		}
	}
	return false
}

// Snapshot returns copies of all windows, back-to-front.
func (r *Registry) Snapshot() []Window {
	return r.filter(func(*Window) bool { return true })
}

// ZOrder returns the back-to-front id list.
func (r *Registry) ZOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.zorder...)
}

// Len returns the number of open windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}

// Metrics returns the pixel constants the registry was built with.
func (r *Registry) Metrics() geometry.Metrics {
	return r.metrics
}

func (r *Registry) filter(keep func(*Window) bool) []Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Window, 0, len(r.zorder))
	for _, id := range r.zorder {
		if win := r.windows[id]; keep(win) {
			out = append(out, *win)
		}
	}
	return out
}

// focusLocked applies the full focus semantics to a known window.
func (r *Registry) focusLocked(win *Window) {
	r.unfocusAllLocked()
	win.Focused = true
	win.Minimized = false
	r.zorder = removeID(r.zorder, win.ID)
	r.zorder = append(r.zorder, win.ID)
	r.reindexLocked()
}

// focusTopmostLocked focuses the topmost non-minimized window after a close.
func (r *Registry) focusTopmostLocked() {
	for i := len(r.zorder) - 1; i >= 0; i-- {
		if win := r.windows[r.zorder[i]]; !win.Minimized {
			r.focusLocked(win)
			return
		}
	}
}

func (r *Registry) unfocusAllLocked() {
	for _, win := range r.windows {
		win.Focused = false
	}
}

// reindexLocked derives each window's z-index from its list position; the
// z-order list is the only authority on stacking.
func (r *Registry) reindexLocked() {
	for i, id := range r.zorder {
		r.windows[id].ZIndex = i + 1
	}
}

func (r *Registry) publish(ev eventbus.Event) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
