package desktop

import (
	"testing"

	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/focusnav"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
)

func newDesktop(t *testing.T) *Desktop {
	t.Helper()
	return New(Options{
		Viewport:      geometry.Size{Width: 1920, Height: 1080},
		FrameInterval: -1,
	})
}

func TestSetViewport_RelaysOutSnappedWindows(t *testing.T) {
	d := newDesktop(t)
	reg := d.Registry()
	left := reg.Create("files", registry.CreateOptions{})
	maxed := reg.Create("notes", registry.CreateOptions{})
	free := reg.Create("term", registry.CreateOptions{Bounds: &geometry.Rect{X: 1800, Y: 100, Width: 400, Height: 300}})

	m := reg.Metrics()
	reg.SnapTo(left, registry.SnapLeft, geometry.SnapTarget(geometry.ZoneLeft, d.Viewport(), m))
	reg.Maximize(maxed)

	d.SetViewport(geometry.Size{Width: 1000, Height: 800})

	if win, _ := reg.Get(left); win.Bounds.Width != 500 {
		t.Fatalf("left-snapped width = %d, want half of 1000", win.Bounds.Width)
	}
	if win, _ := reg.Get(maxed); win.Bounds != (geometry.Rect{X: 0, Y: 0, Width: 1000, Height: 752}) {
		t.Fatalf("maximized bounds = %+v", win.Bounds)
	}
	if win, _ := reg.Get(free); win.Bounds.X > 1000-100 {
		t.Fatalf("free window left off-screen at X=%d", win.Bounds.X)
	}
}

func TestSetViewport_PublishesResize(t *testing.T) {
	d := newDesktop(t)
	var got geometry.Size
	unsub := d.Bus().Subscribe(func(ev eventbus.Event) {
		if ev.Type == eventbus.ViewportResized {
			got = ev.Data.(geometry.Size)
		}
	})
	defer unsub()

	d.SetViewport(geometry.Size{Width: 800, Height: 600})
	if got.Width != 800 {
		t.Fatalf("resize event carried %+v", got)
	}

	got = geometry.Size{}
	d.SetViewport(geometry.Size{Width: 800, Height: 600})
	if got.Width != 0 {
		t.Fatal("same-size resize should not republish")
	}
}

func TestStartMenu_ToggleAndContext(t *testing.T) {
	d := newDesktop(t)
	if d.StartMenuOpen() {
		t.Fatal("menu should start closed")
	}
	d.ToggleStartMenu()
	if !d.StartMenuOpen() {
		t.Fatal("toggle should open the menu")
	}
	if d.context() != "start-menu" {
		t.Fatalf("context = %q", d.context())
	}
	d.ToggleStartMenu()
	if d.StartMenuOpen() || d.context() != "desktop" {
		t.Fatal("toggle should close the menu again")
	}
}

func TestRequestClose_CleanWindowClosesImmediately(t *testing.T) {
	d := newDesktop(t)
	id := d.Registry().Create("files", registry.CreateOptions{})
	d.RequestClose(id)
	if d.Registry().Len() != 0 {
		t.Fatal("clean window should close without confirmation")
	}
}

func TestRequestClose_UnsavedWindowWaitsForConfirmation(t *testing.T) {
	var asked []string
	d := New(Options{
		Viewport:      geometry.Size{Width: 1920, Height: 1080},
		FrameInterval: -1,
		ConfirmClose:  func(id string) { asked = append(asked, id) },
	})
	id := d.Registry().Create("files", registry.CreateOptions{})
	d.Registry().UpdateUnsavedState(id, true)

	d.RequestClose(id)
	d.RequestClose(id) // second request must not re-prompt
	if len(asked) != 1 || asked[0] != id {
		t.Fatalf("confirmation prompts = %v", asked)
	}
	if d.Registry().Len() != 1 || !d.ClosePending(id) {
		t.Fatal("window should stay open, close pending")
	}

	d.ConfirmClose(id)
	if d.Registry().Len() != 0 {
		t.Fatal("confirmed close should remove the window")
	}
}

func TestCancelClose_LeavesWindowOpen(t *testing.T) {
	d := newDesktop(t)
	id := d.Registry().Create("files", registry.CreateOptions{})
	d.Registry().UpdateUnsavedState(id, true)

	d.RequestClose(id)
	d.CancelClose(id)
	d.ConfirmClose(id) // no longer pending, must be a no-op
	if d.Registry().Len() != 1 {
		t.Fatal("cancelled close must leave the window open")
	}
}

func TestAppHooks_DriveRegistryFields(t *testing.T) {
	d := newDesktop(t)
	id := d.Registry().Create("files", registry.CreateOptions{})
	onTitle, onUnsaved := d.AppHooks(id)

	onTitle("budget.xlsx")
	if win, _ := d.Registry().Get(id); win.Title != "budget.xlsx" {
		t.Fatalf("title = %q", win.Title)
	}

	onUnsaved(true)
	d.RequestClose(id)
	if !d.ClosePending(id) {
		t.Fatal("close should be pending for unsaved window")
	}

	// Saving resolves the pending prompt.
	onUnsaved(false)
	if d.ClosePending(id) {
		t.Fatal("save should abandon the pending close")
	}
}

func TestKeyDown_EscapeCancelsDragFirst(t *testing.T) {
	d := newDesktop(t)
	start := geometry.Rect{X: 100, Y: 100, Width: 800, Height: 600}
	id := d.Registry().Create("files", registry.CreateOptions{Bounds: &start})

	if err := d.Drag().Begin(id, 500, 110); err != nil {
		t.Fatalf("begin: %v", err)
	}
	d.Drag().Update(10, 300)
	if !d.KeyDown("Escape") {
		t.Fatal("escape should be consumed during a drag")
	}
	if win, _ := d.Registry().Get(id); win.Bounds != start {
		t.Fatalf("bounds = %+v, want %+v restored", win.Bounds, start)
	}
}

func TestKeyDown_EscapeClosesStartMenu(t *testing.T) {
	d := newDesktop(t)
	d.Focus().Register(focusnav.Element{ID: StartButtonID, Type: focusnav.TypeTaskbarButton})
	d.OpenStartMenu()

	if !d.KeyDown("Escape") {
		t.Fatal("escape should be consumed while the menu is open")
	}
	if d.StartMenuOpen() {
		t.Fatal("menu should be closed")
	}
	if cur, _ := d.Focus().Current(); cur != StartButtonID {
		t.Fatalf("focus on %q, want the start button", cur)
	}
}

func TestKeyDown_TabWalksFocusOrder(t *testing.T) {
	d := newDesktop(t)
	d.Focus().Register(focusnav.Element{ID: "icon-a", Type: focusnav.TypeDesktopIcon})
	d.Focus().Register(focusnav.Element{ID: "icon-b", Type: focusnav.TypeDesktopIcon})

	d.KeyDown("Tab")
	if cur, _ := d.Focus().Current(); cur != "icon-a" {
		t.Fatalf("first tab landed on %q", cur)
	}
	d.KeyUp("Tab")

	d.KeyDown("Shift")
	d.KeyDown("Tab")
	if cur, _ := d.Focus().Current(); cur != "icon-b" {
		t.Fatalf("shift+tab landed on %q", cur)
	}
}

func TestKeyDown_AltTabBypassesFocusNav(t *testing.T) {
	d := newDesktop(t)
	reg := d.Registry()
	w1 := reg.Create("files", registry.CreateOptions{})
	reg.Create("notes", registry.CreateOptions{})

	d.KeyDown("Alt")
	d.KeyDown("Tab")
	if win, _ := reg.Focused(); win.ID != w1 {
		t.Fatalf("alt+tab focused %q, want %q", win.ID, w1)
	}
}

func TestBlur_ClearsPressedKeys(t *testing.T) {
	d := newDesktop(t)
	d.KeyDown("Shift")
	d.Blur()
	if d.Router().IsPressed("shift") {
		t.Fatal("blur should clear the pressed set")
	}
}

func TestSnapshot(t *testing.T) {
	d := newDesktop(t)
	id := d.Registry().Create("files", registry.CreateOptions{})
	d.OpenStartMenu()

	st := d.Snapshot()
	if len(st.Windows) != 1 || st.ZOrder[0] != id {
		t.Fatalf("snapshot windows = %+v", st.Windows)
	}
	if !st.StartMenuOpen || st.Viewport.Width != 1920 {
		t.Fatalf("snapshot state = %+v", st)
	}
}
