package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandFocusWindow    CommandType = "FOCUS_WINDOW"
	CommandCloseWindow    CommandType = "CLOSE_WINDOW"
	CommandSnapWindow     CommandType = "SNAP_WINDOW"
	CommandMinimizeWindow CommandType = "MINIMIZE_WINDOW"
	CommandMaximizeWindow CommandType = "MAXIMIZE_WINDOW"
	CommandCycle          CommandType = "CYCLE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount   int           `json:"window_count"`
	FocusedWindow string        `json:"focused_window,omitempty"`
	Viewport      geometry.Size `json:"viewport"`
	StartMenuOpen bool          `json:"start_menu_open"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	DaemonRunning bool          `json:"daemon_running"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []registry.Window `json:"windows"`
	ZOrder  []string          `json:"z_order"`
}

// WindowPayload addresses a single window for FOCUS/MINIMIZE/MAXIMIZE
type WindowPayload struct {
	WindowID string `json:"window_id"`
}

// CloseWindowPayload represents the payload for CLOSE_WINDOW
type CloseWindowPayload struct {
	WindowID string `json:"window_id"`
	Force    bool   `json:"force,omitempty"`
}

// SnapWindowPayload represents the payload for SNAP_WINDOW
type SnapWindowPayload struct {
	WindowID string `json:"window_id"`
	State    string `json:"state"` // "left", "right", or "maximized"
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
