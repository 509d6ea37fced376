package mcp

import (
	"context"
	"testing"

	"github.com/glassdesk/glassdesk/internal/desktop"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
)

func newServer(t *testing.T) (*Server, *desktop.Desktop) {
	t.Helper()
	desk := desktop.New(desktop.Options{
		Viewport:      geometry.Size{Width: 1920, Height: 1080},
		FrameInterval: -1,
	})
	return NewServer(desk), desk
}

func TestOpenWindow(t *testing.T) {
	s, desk := newServer(t)

	_, out, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{AppID: "files", Title: "Documents"})
	if err != nil {
		t.Fatalf("open_window: %v", err)
	}
	win, ok := desk.Registry().Get(out.WindowID)
	if !ok || win.Title != "Documents" || !win.Focused {
		t.Fatalf("window = %+v", win)
	}

	if _, _, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{}); err == nil {
		t.Fatal("expected error without app_id")
	}
}

func TestCloseWindow_ForceGuard(t *testing.T) {
	s, desk := newServer(t)
	id := desk.Registry().Create("files", registry.CreateOptions{})
	desk.Registry().UpdateUnsavedState(id, true)

	if _, _, err := s.handleCloseWindow(context.Background(), nil, CloseWindowInput{WindowID: id}); err == nil {
		t.Fatal("expected error closing unsaved window without force")
	}
	if _, _, err := s.handleCloseWindow(context.Background(), nil, CloseWindowInput{WindowID: id, Force: true}); err != nil {
		t.Fatalf("forced close: %v", err)
	}
	if desk.Registry().Len() != 0 {
		t.Fatal("window should be gone")
	}
}

func TestSnapWindow(t *testing.T) {
	s, desk := newServer(t)
	id := desk.Registry().Create("files", registry.CreateOptions{})

	if _, _, err := s.handleSnapWindow(context.Background(), nil, SnapWindowInput{WindowID: id, State: "left"}); err != nil {
		t.Fatalf("snap_window: %v", err)
	}
	win, _ := desk.Registry().Get(id)
	if win.SnapState != registry.SnapLeft {
		t.Fatalf("snap state = %q", win.SnapState)
	}

	if _, _, err := s.handleSnapWindow(context.Background(), nil, SnapWindowInput{WindowID: id, State: "diagonal"}); err == nil {
		t.Fatal("expected error for bogus snap state")
	}
	if _, _, err := s.handleSnapWindow(context.Background(), nil, SnapWindowInput{WindowID: "ghost", State: "left"}); err == nil {
		t.Fatal("expected error for unknown window")
	}
}

func TestFocusMinimizeMaximize(t *testing.T) {
	s, desk := newServer(t)
	reg := desk.Registry()
	w1 := reg.Create("files", registry.CreateOptions{})
	reg.Create("notes", registry.CreateOptions{})

	if _, _, err := s.handleFocusWindow(context.Background(), nil, WindowInput{WindowID: w1}); err != nil {
		t.Fatalf("focus_window: %v", err)
	}
	if win, _ := reg.Focused(); win.ID != w1 {
		t.Fatalf("focused %q", win.ID)
	}

	if _, _, err := s.handleMinimizeWindow(context.Background(), nil, WindowInput{WindowID: w1}); err != nil {
		t.Fatalf("minimize_window: %v", err)
	}
	if win, _ := reg.Get(w1); !win.Minimized {
		t.Fatal("expected minimized")
	}

	if _, _, err := s.handleMaximizeWindow(context.Background(), nil, WindowInput{WindowID: w1}); err != nil {
		t.Fatalf("maximize_window: %v", err)
	}
	if win, _ := reg.Get(w1); !win.Maximized {
		t.Fatal("expected maximized")
	}
}

func TestListAndCycle(t *testing.T) {
	s, desk := newServer(t)
	reg := desk.Registry()
	w1 := reg.Create("files", registry.CreateOptions{})
	reg.Create("notes", registry.CreateOptions{})

	_, out, err := s.handleListWindows(context.Background(), nil, struct{}{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(out.Windows) != 2 || len(out.ZOrder) != 2 {
		t.Fatalf("list = %+v", out)
	}

	if _, _, err := s.handleCycleWindows(context.Background(), nil, struct{}{}); err != nil {
		t.Fatalf("cycle_windows: %v", err)
	}
	if win, _ := reg.Focused(); win.ID != w1 {
		t.Fatalf("cycle focused %q, want %q", win.ID, w1)
	}
}
