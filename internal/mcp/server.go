// Package mcp exposes the desktop's window operations as MCP tools over
// stdio, so model-driven clients can manipulate windows the same way the
// keyboard and HTTP surfaces do.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/glassdesk/glassdesk/internal/desktop"
)

const (
	ServerName    = "glassdesk"
	ServerVersion = "0.1.0"
)

// Server is the MCP server for desktop window management.
type Server struct {
	mcpServer *mcpsdk.Server
	desk      *desktop.Desktop
}

// NewServer creates an MCP server bound to a desktop session.
func NewServer(desk *desktop.Desktop) *Server {
	s := &Server{desk: desk}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a new window for an application. Position defaults to the next cascade offset. The new window takes focus and the top of the stacking order. Returns the window id for future reference.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. Windows with unsaved state refuse to close unless force is set.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window: raises it to the top of the stacking order and restores it if minimized.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap a window to the left half, right half, or the full usable area (maximized).",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize a window to the taskbar. Focus moves to the next non-minimized window.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Toggle a window's maximized state. Restoring returns the window to its pre-maximize bounds.",
	}, s.handleMaximizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window with its bounds, state flags, and the back-to-front stacking order.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cycle_windows",
		Description: "Cycle focus forward through the visible windows, like Alt+Tab. No-op with fewer than two visible windows.",
	}, s.handleCycleWindows)
}
