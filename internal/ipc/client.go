package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/glassdesk/glassdesk/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// ListWindows retrieves all window records and the stacking order
func (c *Client) ListWindows() (*WindowsData, error) {
	req := &Request{
		Command: CommandListWindows,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}

	return &data, nil
}

// FocusWindow raises and focuses a window
func (c *Client) FocusWindow(windowID string) error {
	return c.sendWindowCommand(CommandFocusWindow, windowID)
}

// MinimizeWindow minimizes a window
func (c *Client) MinimizeWindow(windowID string) error {
	return c.sendWindowCommand(CommandMinimizeWindow, windowID)
}

// MaximizeWindow toggles a window's maximized state
func (c *Client) MaximizeWindow(windowID string) error {
	return c.sendWindowCommand(CommandMaximizeWindow, windowID)
}

func (c *Client) sendWindowCommand(cmd CommandType, windowID string) error {
	payload, err := json.Marshal(WindowPayload{WindowID: windowID})
	if err != nil {
		return fmt.Errorf("failed to marshal window payload: %w", err)
	}

	req := &Request{
		Command: cmd,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// CloseWindow closes a window; force bypasses the unsaved-state guard
func (c *Client) CloseWindow(windowID string, force bool) error {
	payload, err := json.Marshal(CloseWindowPayload{WindowID: windowID, Force: force})
	if err != nil {
		return fmt.Errorf("failed to marshal close payload: %w", err)
	}

	req := &Request{
		Command: CommandCloseWindow,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SnapWindow snaps a window left, right, or maximized
func (c *Client) SnapWindow(windowID, state string) error {
	payload, err := json.Marshal(SnapWindowPayload{WindowID: windowID, State: state})
	if err != nil {
		return fmt.Errorf("failed to marshal snap payload: %w", err)
	}

	req := &Request{
		Command: CommandSnapWindow,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// Cycle advances focus through the visible windows
func (c *Client) Cycle() error {
	req := &Request{
		Command: CommandCycle,
	}

	_, err := c.sendRequest(req)
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
