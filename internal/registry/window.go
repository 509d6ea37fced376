package registry

import (
	"github.com/glassdesk/glassdesk/internal/geometry"
)

// SnapState records how a window's current bounds were derived.
type SnapState string

const (
	SnapNone      SnapState = "none"
	SnapLeft      SnapState = "left"
	SnapRight     SnapState = "right"
	SnapMaximized SnapState = "maximized"
)

// Window is the authoritative record for one open window.
//
// Bounds is meaningful only while the window is not maximized; the maximized
// rectangle is computed from the live viewport at use time and never stored.
// A maximized window that gets minimized keeps Maximized set, so focusing it
// later restores the maximized presentation rather than the pre-maximize
// bounds.
type Window struct {
	ID        string        `json:"id"`
	AppID     string        `json:"app_id"`
	Title     string        `json:"title"`
	Bounds    geometry.Rect `json:"bounds"`
	ZIndex    int           `json:"z_index"`
	Minimized bool          `json:"minimized"`
	Maximized bool          `json:"maximized"`
	SnapState SnapState     `json:"snap_state"`
	Focused   bool          `json:"focused"`
	// HasUnsavedState is set by the hosted application content and gates
	// whether closing requires force.
	HasUnsavedState bool `json:"has_unsaved_state"`
}

// Visible reports whether the window currently occupies screen space.
func (w *Window) Visible() bool {
	return !w.Minimized
}

// CreateOptions carries optional initial values for Create. Zero value means
// "use defaults".
type CreateOptions struct {
	Title  string
	Bounds *geometry.Rect
}

// BoundsPatch is a shallow partial update of a window's bounds. Nil fields
// are left unchanged.
type BoundsPatch struct {
	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
	W *int `json:"w,omitempty"`
	H *int `json:"h,omitempty"`
}

func (p BoundsPatch) apply(b geometry.Rect) geometry.Rect {
	if p.X != nil {
		b.X = *p.X
	}
	if p.Y != nil {
		b.Y = *p.Y
	}
	if p.W != nil {
		b.Width = *p.W
	}
	if p.H != nil {
		b.Height = *p.H
	}
	return b
}

// Patch builds a full-rect patch. Convenience for callers committing complete
// rectangles (drag/resize/snap).
func Patch(r geometry.Rect) BoundsPatch {
	x, y, w, h := r.X, r.Y, r.Width, r.Height
	return BoundsPatch{X: &x, Y: &y, W: &w, H: &h}
}
