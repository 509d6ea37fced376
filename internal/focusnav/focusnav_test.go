package focusnav

import (
	"testing"

	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
)

func testMetrics() geometry.Metrics {
	return geometry.Metrics{
		TaskbarHeight:  48,
		TitleBarHeight: 32,
		EdgeTrigger:    16,
		MinWidth:       320,
		MinHeight:      240,
		VisiblePercent: 25,
		CascadeWrap:    10,
		DefaultWidth:   800,
		DefaultHeight:  600,
	}
}

func TestOrderedList_TypeAndPriorityOrder(t *testing.T) {
	m := New(Options{})
	m.Register(Element{ID: "win-a", Type: TypeWindow})
	m.Register(Element{ID: "icon-a", Type: TypeDesktopIcon})
	m.Register(Element{ID: "task-a", Type: TypeTaskbarButton})
	m.Register(Element{ID: "urgent", Type: TypeWindow, Priority: -1})

	got := m.OrderedList()
	want := []string{"urgent", "icon-a", "task-a", "win-a"}
	if len(got) != len(want) {
		t.Fatalf("list length = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestOrderedList_FiltersMinimizedWindows(t *testing.T) {
	reg := registry.New(testMetrics(), eventbus.New(), nil)
	id := reg.Create("files", registry.CreateOptions{})
	m := New(Options{Registry: reg})
	m.Register(Element{ID: id, Type: TypeWindow})

	if len(m.OrderedList()) != 1 {
		t.Fatal("visible window should be listed")
	}
	reg.Minimize(id)
	if len(m.OrderedList()) != 0 {
		t.Fatal("minimized window should drop out of the tab order")
	}
}

func TestOrderedList_StartMenuItemsGatedOnMenu(t *testing.T) {
	open := false
	m := New(Options{MenuOpen: func() bool { return open }})
	m.Register(Element{ID: "menu-files", Type: TypeStartMenuItem})

	if len(m.OrderedList()) != 0 {
		t.Fatal("menu items should hide while the menu is closed")
	}
	open = true
	if len(m.OrderedList()) != 1 {
		t.Fatal("menu items should appear when the menu opens")
	}
}

func TestRegister_ImmediateUnregisterIsSafe(t *testing.T) {
	m := New(Options{})
	unreg := m.Register(Element{ID: "icon-a", Type: TypeDesktopIcon})
	unreg()
	unreg() // idempotent
	if len(m.OrderedList()) != 0 {
		t.Fatal("unregistered element still listed")
	}
	m.FocusNext() // must not panic on an empty list
}

func TestFocusNext_WrapsBothWays(t *testing.T) {
	var focused []string
	m := New(Options{OnFocus: func(el Element) { focused = append(focused, el.ID) }})
	m.Register(Element{ID: "a", Type: TypeDesktopIcon})
	m.Register(Element{ID: "b", Type: TypeDesktopIcon})
	m.Register(Element{ID: "c", Type: TypeDesktopIcon})

	m.FocusNext() // a
	m.FocusNext() // b
	m.FocusNext() // c
	m.FocusNext() // wraps to a
	m.FocusPrevious() // back to c

	want := []string{"a", "b", "c", "a", "c"}
	if len(focused) != len(want) {
		t.Fatalf("focus calls %v, want %v", focused, want)
	}
	for i, id := range want {
		if focused[i] != id {
			t.Fatalf("focus calls %v, want %v", focused, want)
		}
	}
}

func TestFocusElement_UnknownIDIsNoOp(t *testing.T) {
	calls := 0
	m := New(Options{OnFocus: func(Element) { calls++ }})
	m.Register(Element{ID: "a", Type: TypeDesktopIcon})

	m.FocusElement("ghost")
	if calls != 0 {
		t.Fatal("unknown id must not move focus")
	}
	if _, ok := m.Current(); ok {
		t.Fatal("current should remain unset")
	}
}

func TestFirstLastAndTab(t *testing.T) {
	m := New(Options{})
	m.Register(Element{ID: "a", Type: TypeDesktopIcon})
	m.Register(Element{ID: "b", Type: TypeTaskbarButton})

	m.FocusLast()
	if cur, _ := m.Current(); cur != "b" {
		t.Fatalf("current = %q, want b", cur)
	}
	m.FocusFirst()
	if cur, _ := m.Current(); cur != "a" {
		t.Fatalf("current = %q, want a", cur)
	}
	m.HandleTab(false)
	if cur, _ := m.Current(); cur != "b" {
		t.Fatalf("tab landed on %q, want b", cur)
	}
	m.HandleTab(true)
	if cur, _ := m.Current(); cur != "a" {
		t.Fatalf("shift+tab landed on %q, want a", cur)
	}
}

func TestHandleEscape_ClosesMenuAndRefocusesStartButton(t *testing.T) {
	open := true
	m := New(Options{
		MenuOpen:      func() bool { return open },
		CloseMenu:     func() { open = false },
		StartButtonID: "start-button",
	})
	m.Register(Element{ID: "start-button", Type: TypeTaskbarButton})
	m.Register(Element{ID: "menu-files", Type: TypeStartMenuItem})

	if !m.HandleEscape() {
		t.Fatal("escape should be consumed while the menu is open")
	}
	if open {
		t.Fatal("menu should close")
	}
	if cur, _ := m.Current(); cur != "start-button" {
		t.Fatalf("current = %q, want start-button", cur)
	}
	if m.HandleEscape() {
		t.Fatal("escape should pass through once the menu is closed")
	}
}

func TestMoveIcon_SpatialRows(t *testing.T) {
	// Two rows of icons:
	//   a(0,0)    b(100,0)
	//   c(0,120)  d(100,118)  row tolerance absorbs the 2px jitter
	m := New(Options{RowTolerance: 8})
	m.Register(Element{ID: "a", Type: TypeDesktopIcon, Bounds: geometry.Rect{X: 0, Y: 0, Width: 80, Height: 90}})
	m.Register(Element{ID: "b", Type: TypeDesktopIcon, Bounds: geometry.Rect{X: 100, Y: 0, Width: 80, Height: 90}})
	m.Register(Element{ID: "c", Type: TypeDesktopIcon, Bounds: geometry.Rect{X: 0, Y: 120, Width: 80, Height: 90}})
	m.Register(Element{ID: "d", Type: TypeDesktopIcon, Bounds: geometry.Rect{X: 100, Y: 118, Width: 80, Height: 90}})

	m.SetCurrent("b")
	m.MoveIcon(DirDown)
	if cur, _ := m.Current(); cur != "d" {
		t.Fatalf("down from b landed on %q, want d", cur)
	}
	m.MoveIcon(DirUp)
	if cur, _ := m.Current(); cur != "b" {
		t.Fatalf("up from d landed on %q, want b", cur)
	}
	m.MoveIcon(DirUp)
	if cur, _ := m.Current(); cur != "b" {
		t.Fatalf("up from the top row must stay put, got %q", cur)
	}
	m.MoveIcon(DirLeft)
	if cur, _ := m.Current(); cur != "a" {
		t.Fatalf("left from b landed on %q, want a", cur)
	}
	m.MoveIcon(DirLeft)
	if cur, _ := m.Current(); cur != "a" {
		t.Fatalf("left at the edge must stay put, got %q", cur)
	}
}

func TestMoveIcon_NoCurrentPicksFirstIcon(t *testing.T) {
	m := New(Options{})
	m.Register(Element{ID: "task", Type: TypeTaskbarButton})
	m.Register(Element{ID: "icon", Type: TypeDesktopIcon})

	m.MoveIcon(DirRight)
	if cur, _ := m.Current(); cur != "icon" {
		t.Fatalf("current = %q, want icon", cur)
	}
}

func TestDisabledManager(t *testing.T) {
	m := New(Options{})
	m.SetEnabled(false)
	unreg := m.Register(Element{ID: "a", Type: TypeDesktopIcon})
	unreg()
	m.FocusNext()
	if _, ok := m.Current(); ok {
		t.Fatal("disabled manager must not move focus")
	}
}
