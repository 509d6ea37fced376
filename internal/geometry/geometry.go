package geometry

// Rect represents a window position and size in viewport pixels.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"w" yaml:"w"`
	Height int `json:"h" yaml:"h"`
}

// Size represents viewport dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether the point (x, y) lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the rect's center point.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Zone identifies a snap zone a dragged window can be dropped into.
type Zone int

const (
	// ZoneNone means the drag position is outside every snap trigger.
	ZoneNone Zone = iota
	// ZoneLeft snaps the window to the left half of the usable area.
	ZoneLeft
	// ZoneRight snaps the window to the right half of the usable area.
	ZoneRight
	// ZoneMaximize snaps the window to the full usable area and maximizes it.
	ZoneMaximize
)

// String returns the string representation of the zone.
func (z Zone) String() string {
	switch z {
	case ZoneNone:
		return "none"
	case ZoneLeft:
		return "left"
	case ZoneRight:
		return "right"
	case ZoneMaximize:
		return "maximize"
	default:
		return "unknown"
	}
}

// Metrics holds the fixed pixel constants every bounds computation depends on.
// Values come from configuration; the viewport size is always passed live so a
// resize is never computed against stale dimensions.
type Metrics struct {
	TaskbarHeight  int
	TitleBarHeight int
	EdgeTrigger    int
	MinWidth       int
	MinHeight      int
	VisiblePercent int
	CascadeBaseX   int
	CascadeBaseY   int
	CascadeStep    int
	CascadeWrap    int
	DefaultWidth   int
	DefaultHeight  int
}

// Usable returns the viewport area available to windows: everything above the
// taskbar.
func Usable(viewport Size, m Metrics) Rect {
	h := viewport.Height - m.TaskbarHeight
	if h < 1 {
		h = 1
	}
	return Rect{X: 0, Y: 0, Width: viewport.Width, Height: h}
}

// SnapTarget returns the rectangle a window assumes when dropped into zone.
// ZoneNone yields a zero rect.
func SnapTarget(zone Zone, viewport Size, m Metrics) Rect {
	usable := Usable(viewport, m)
	switch zone {
	case ZoneLeft:
		return Rect{X: usable.X, Y: usable.Y, Width: usable.Width / 2, Height: usable.Height}
	case ZoneRight:
		return Rect{X: usable.X + usable.Width/2, Y: usable.Y, Width: usable.Width - usable.Width/2, Height: usable.Height}
	case ZoneMaximize:
		return usable
	default:
		return Rect{}
	}
}

// DetectZone maps a live pointer position to the snap zone it triggers, or
// ZoneNone. The top strip wins over the side strips so dragging into a corner
// maximizes rather than half-snaps.
func DetectZone(pointerX, pointerY int, viewport Size, m Metrics) Zone {
	usable := Usable(viewport, m)
	if pointerY >= usable.Bottom() {
		return ZoneNone
	}
	if pointerY < m.EdgeTrigger {
		return ZoneMaximize
	}
	if pointerX < m.EdgeTrigger {
		return ZoneLeft
	}
	if pointerX >= viewport.Width-m.EdgeTrigger {
		return ZoneRight
	}
	return ZoneNone
}

// ClampDrag constrains a free-drag candidate position so a minimum sliver of
// the window stays reachable: VisiblePercent of its width horizontally and the
// full title bar vertically. Size is never altered.
func ClampDrag(b Rect, viewport Size, m Metrics) Rect {
	usable := Usable(viewport, m)

	sliver := b.Width * m.VisiblePercent / 100
	if sliver < 1 {
		sliver = 1
	}

	minX := sliver - b.Width
	maxX := viewport.Width - sliver
	if b.X < minX {
		b.X = minX
	}
	if b.X > maxX {
		b.X = maxX
	}

	maxY := usable.Height - m.TitleBarHeight
	if maxY < 0 {
		maxY = 0
	}
	if b.Y < 0 {
		b.Y = 0
	}
	if b.Y > maxY {
		b.Y = maxY
	}

	return b
}

// ClampSize enforces the minimum window size floor on a rect.
func ClampSize(b Rect, m Metrics) Rect {
	if b.Width < m.MinWidth {
		b.Width = m.MinWidth
	}
	if b.Height < m.MinHeight {
		b.Height = m.MinHeight
	}
	return b
}

// Cascade returns the default top-left position for the n-th created window
// (0-based). Each window is offset diagonally by CascadeStep from the previous
// one; after CascadeWrap windows the offset wraps back to the base so new
// windows never drift off-screen.
func Cascade(n int, m Metrics) (x, y int) {
	wrap := m.CascadeWrap
	if wrap <= 0 {
		wrap = 1
	}
	step := n % wrap
	return m.CascadeBaseX + step*m.CascadeStep, m.CascadeBaseY + step*m.CascadeStep
}

// DefaultBounds returns the full default rect for the n-th created window.
func DefaultBounds(n int, m Metrics) Rect {
	x, y := Cascade(n, m)
	return Rect{X: x, Y: y, Width: m.DefaultWidth, Height: m.DefaultHeight}
}
