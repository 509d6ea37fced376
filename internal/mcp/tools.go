package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
	"github.com/glassdesk/glassdesk/internal/shortcut"
)

type OpenWindowInput struct {
	AppID  string         `json:"app_id" jsonschema:"required,The application identifier the window belongs to"`
	Title  string         `json:"title,omitempty" jsonschema:"Initial window title"`
	Bounds *geometry.Rect `json:"bounds,omitempty" jsonschema:"Initial bounds; omitted means the next cascade position with default size"`
}

type OpenWindowOutput struct {
	WindowID string `json:"window_id"`
}

type WindowInput struct {
	WindowID string `json:"window_id" jsonschema:"required,Id of the target window"`
}

type CloseWindowInput struct {
	WindowID string `json:"window_id" jsonschema:"required,Id of the target window"`
	Force    bool   `json:"force,omitempty" jsonschema:"Close even if the window has unsaved state"`
}

type SnapWindowInput struct {
	WindowID string `json:"window_id" jsonschema:"required,Id of the target window"`
	State    string `json:"state" jsonschema:"required,One of left right maximized"`
}

type ListWindowsOutput struct {
	Windows []registry.Window `json:"windows"`
	ZOrder  []string          `json:"z_order"`
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, OpenWindowOutput, error) {
	if args.AppID == "" {
		return nil, OpenWindowOutput{}, fmt.Errorf("app_id is required")
	}

	id := s.desk.Registry().Create(args.AppID, registry.CreateOptions{
		Title:  args.Title,
		Bounds: args.Bounds,
	})

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Opened window %s for %s", id, args.AppID)},
		},
	}, OpenWindowOutput{WindowID: id}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, any, error) {
	if _, ok := s.desk.Registry().Get(args.WindowID); !ok {
		return nil, nil, fmt.Errorf("unknown window %q", args.WindowID)
	}
	if !s.desk.Registry().Close(args.WindowID, args.Force) {
		return nil, nil, fmt.Errorf("window %q has unsaved state; retry with force", args.WindowID)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Closed window %s", args.WindowID)},
		},
	}, nil, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, any, error) {
	if _, ok := s.desk.Registry().Get(args.WindowID); !ok {
		return nil, nil, fmt.Errorf("unknown window %q", args.WindowID)
	}
	s.desk.Registry().Focus(args.WindowID)

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Focused window %s", args.WindowID)},
		},
	}, nil, nil
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, any, error) {
	reg := s.desk.Registry()
	if _, ok := reg.Get(args.WindowID); !ok {
		return nil, nil, fmt.Errorf("unknown window %q", args.WindowID)
	}

	var state registry.SnapState
	var zone geometry.Zone
	switch args.State {
	case "left":
		state, zone = registry.SnapLeft, geometry.ZoneLeft
	case "right":
		state, zone = registry.SnapRight, geometry.ZoneRight
	case "maximized":
		state, zone = registry.SnapMaximized, geometry.ZoneMaximize
	default:
		return nil, nil, fmt.Errorf("unknown snap state %q; expected left, right, or maximized", args.State)
	}

	target := geometry.SnapTarget(zone, s.desk.Viewport(), reg.Metrics())
	reg.SnapTo(args.WindowID, state, target)

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Snapped window %s %s", args.WindowID, args.State)},
		},
	}, nil, nil
}

func (s *Server) handleMinimizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, any, error) {
	if _, ok := s.desk.Registry().Get(args.WindowID); !ok {
		return nil, nil, fmt.Errorf("unknown window %q", args.WindowID)
	}
	s.desk.Registry().Minimize(args.WindowID)

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Minimized window %s", args.WindowID)},
		},
	}, nil, nil
}

func (s *Server) handleMaximizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, any, error) {
	reg := s.desk.Registry()
	if _, ok := reg.Get(args.WindowID); !ok {
		return nil, nil, fmt.Errorf("unknown window %q", args.WindowID)
	}
	reg.Maximize(args.WindowID)

	verb := "Restored"
	if win, _ := reg.Get(args.WindowID); win.Maximized {
		verb = "Maximized"
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("%s window %s", verb, args.WindowID)},
		},
	}, nil, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	reg := s.desk.Registry()
	out := ListWindowsOutput{
		Windows: reg.Snapshot(),
		ZOrder:  reg.ZOrder(),
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("%d windows", len(out.Windows))},
		},
	}, out, nil
}

func (s *Server) handleCycleWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, any, error) {
	shortcut.Cycle(s.desk.Registry())

	text := "No cycle: fewer than two visible windows"
	if win, ok := s.desk.Registry().Focused(); ok {
		text = fmt.Sprintf("Focused window %s", win.ID)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, nil, nil
}
