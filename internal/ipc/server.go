package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/glassdesk/glassdesk/internal/config"
	"github.com/glassdesk/glassdesk/internal/desktop"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
	"github.com/glassdesk/glassdesk/internal/runtimepath"
	"github.com/glassdesk/glassdesk/internal/shortcut"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	desk         *desktop.Desktop
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, desk *desktop.Desktop, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		desk:       desk,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandFocusWindow:
		return s.handleFocusWindow(req.Payload)
	case CommandCloseWindow:
		return s.handleCloseWindow(req.Payload)
	case CommandSnapWindow:
		return s.handleSnapWindow(req.Payload)
	case CommandMinimizeWindow:
		return s.handleMinimizeWindow(req.Payload)
	case CommandMaximizeWindow:
		return s.handleMaximizeWindow(req.Payload)
	case CommandCycle:
		return s.handleCycle()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	reg := s.desk.Registry()

	status := StatusData{
		WindowCount:   reg.Len(),
		Viewport:      s.desk.Viewport(),
		StartMenuOpen: s.desk.StartMenuOpen(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}
	if win, ok := reg.Focused(); ok {
		status.FocusedWindow = win.ID
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleListWindows returns every window record plus the stacking order
func (s *Server) handleListWindows() *Response {
	reg := s.desk.Registry()
	data := WindowsData{
		Windows: reg.Snapshot(),
		ZOrder:  reg.ZOrder(),
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleFocusWindow(payload json.RawMessage) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid focus payload: %v", err))
	}
	if req.WindowID == "" {
		return NewErrorResponse("window_id is required")
	}
	if _, ok := s.desk.Registry().Get(req.WindowID); !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown window: %s", req.WindowID))
	}

	s.desk.Registry().Focus(req.WindowID)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleCloseWindow(payload json.RawMessage) *Response {
	var req CloseWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
	}
	if req.WindowID == "" {
		return NewErrorResponse("window_id is required")
	}
	if _, ok := s.desk.Registry().Get(req.WindowID); !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown window: %s", req.WindowID))
	}

	if !s.desk.Registry().Close(req.WindowID, req.Force) {
		return NewErrorResponse("window has unsaved state; retry with force")
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSnapWindow(payload json.RawMessage) *Response {
	var req SnapWindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snap payload: %v", err))
	}
	if req.WindowID == "" {
		return NewErrorResponse("window_id is required")
	}

	reg := s.desk.Registry()
	if _, ok := reg.Get(req.WindowID); !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown window: %s", req.WindowID))
	}

	var state registry.SnapState
	var zone geometry.Zone
	switch req.State {
	case "left":
		state, zone = registry.SnapLeft, geometry.ZoneLeft
	case "right":
		state, zone = registry.SnapRight, geometry.ZoneRight
	case "maximized":
		state, zone = registry.SnapMaximized, geometry.ZoneMaximize
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown snap state: %s", req.State))
	}

	target := geometry.SnapTarget(zone, s.desk.Viewport(), reg.Metrics())
	reg.SnapTo(req.WindowID, state, target)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleMinimizeWindow(payload json.RawMessage) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid minimize payload: %v", err))
	}
	if req.WindowID == "" {
		return NewErrorResponse("window_id is required")
	}
	if _, ok := s.desk.Registry().Get(req.WindowID); !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown window: %s", req.WindowID))
	}

	s.desk.Registry().Minimize(req.WindowID)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleMaximizeWindow(payload json.RawMessage) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid maximize payload: %v", err))
	}
	if req.WindowID == "" {
		return NewErrorResponse("window_id is required")
	}
	if _, ok := s.desk.Registry().Get(req.WindowID); !ok {
		return NewErrorResponse(fmt.Sprintf("Unknown window: %s", req.WindowID))
	}

	s.desk.Registry().Maximize(req.WindowID)

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleCycle() *Response {
	shortcut.Cycle(s.desk.Registry())

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
