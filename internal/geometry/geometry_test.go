package geometry

import "testing"

func testMetrics() Metrics {
	return Metrics{
		TaskbarHeight:  48,
		TitleBarHeight: 32,
		EdgeTrigger:    16,
		MinWidth:       320,
		MinHeight:      240,
		VisiblePercent: 25,
		CascadeBaseX:   60,
		CascadeBaseY:   60,
		CascadeStep:    28,
		CascadeWrap:    10,
		DefaultWidth:   800,
		DefaultHeight:  600,
	}
}

func TestUsable_ExcludesTaskbar(t *testing.T) {
	got := Usable(Size{Width: 1920, Height: 1080}, testMetrics())
	want := Rect{X: 0, Y: 0, Width: 1920, Height: 1032}
	if got != want {
		t.Fatalf("Usable = %+v, want %+v", got, want)
	}
}

func TestSnapTarget_HalvesCoverUsableArea(t *testing.T) {
	viewport := Size{Width: 1919, Height: 1080}
	m := testMetrics()

	left := SnapTarget(ZoneLeft, viewport, m)
	right := SnapTarget(ZoneRight, viewport, m)

	if left.X != 0 || left.Y != 0 {
		t.Fatalf("left target origin = (%d,%d), want (0,0)", left.X, left.Y)
	}
	if right.X != left.Right() {
		t.Fatalf("right target starts at %d, want %d", right.X, left.Right())
	}
	if left.Width+right.Width != viewport.Width {
		t.Fatalf("halves cover %d px, want %d", left.Width+right.Width, viewport.Width)
	}

	max := SnapTarget(ZoneMaximize, viewport, m)
	if max != Usable(viewport, m) {
		t.Fatalf("maximize target = %+v, want usable area", max)
	}
}

func TestDetectZone(t *testing.T) {
	viewport := Size{Width: 1920, Height: 1080}
	m := testMetrics()

	tests := []struct {
		name string
		x, y int
		want Zone
	}{
		{"center", 960, 540, ZoneNone},
		{"left strip", 10, 540, ZoneLeft},
		{"left strip boundary", 15, 540, ZoneLeft},
		{"just outside left strip", 16, 540, ZoneNone},
		{"right strip", 1910, 540, ZoneRight},
		{"top strip", 960, 5, ZoneMaximize},
		{"top-left corner prefers maximize", 5, 5, ZoneMaximize},
		{"below taskbar edge", 10, 1040, ZoneNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectZone(tt.x, tt.y, viewport, m); got != tt.want {
				t.Errorf("DetectZone(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestClampDrag_KeepsSliverVisible(t *testing.T) {
	viewport := Size{Width: 1920, Height: 1080}
	m := testMetrics()
	b := Rect{X: 0, Y: 0, Width: 800, Height: 600}

	// Dragged far off the left edge: 25% of width (200px) must stay on-screen.
	got := ClampDrag(Rect{X: -5000, Y: 100, Width: 800, Height: 600}, viewport, m)
	if got.X != -600 {
		t.Fatalf("left clamp X = %d, want -600", got.X)
	}

	// Far off the right edge.
	got = ClampDrag(Rect{X: 5000, Y: 100, Width: 800, Height: 600}, viewport, m)
	if got.X != 1920-200 {
		t.Fatalf("right clamp X = %d, want %d", got.X, 1920-200)
	}

	// Above the top: title bar may not leave the viewport.
	got = ClampDrag(Rect{X: 100, Y: -50, Width: 800, Height: 600}, viewport, m)
	if got.Y != 0 {
		t.Fatalf("top clamp Y = %d, want 0", got.Y)
	}

	// Below: the title bar must stay above the taskbar.
	got = ClampDrag(Rect{X: 100, Y: 5000, Width: 800, Height: 600}, viewport, m)
	if got.Y != 1032-32 {
		t.Fatalf("bottom clamp Y = %d, want %d", got.Y, 1032-32)
	}

	// In-range position is untouched.
	got = ClampDrag(Rect{X: 100, Y: 100, Width: 800, Height: 600}, viewport, m)
	if (got != Rect{X: 100, Y: 100, Width: 800, Height: 600}) {
		t.Fatalf("in-range clamp altered bounds: %+v", got)
	}

	// Size never changes.
	if got.Width != b.Width || got.Height != b.Height {
		t.Fatalf("clamp altered size: %+v", got)
	}
}

func TestClampSize_Floor(t *testing.T) {
	m := testMetrics()
	got := ClampSize(Rect{X: 10, Y: 10, Width: 10, Height: 10}, m)
	if got.Width != 320 || got.Height != 240 {
		t.Fatalf("ClampSize = %+v, want 320x240", got)
	}
}

func TestCascade_WrapsAfterConfiguredCount(t *testing.T) {
	m := testMetrics()

	x0, y0 := Cascade(0, m)
	if x0 != 60 || y0 != 60 {
		t.Fatalf("first window at (%d,%d), want (60,60)", x0, y0)
	}

	x1, y1 := Cascade(1, m)
	if x1 != 88 || y1 != 88 {
		t.Fatalf("second window at (%d,%d), want (88,88)", x1, y1)
	}

	// The 11th window (index 10) wraps back to the base.
	x10, y10 := Cascade(10, m)
	if x10 != x0 || y10 != y0 {
		t.Fatalf("11th window at (%d,%d), want base (%d,%d)", x10, y10, x0, y0)
	}
}
