// Package server exposes the desktop over HTTP: a REST surface for window
// operations and state snapshots, and a websocket endpoint that streams
// desktop events out and accepts pointer/keyboard input in.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glassdesk/glassdesk/internal/desktop"
	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
	"github.com/glassdesk/glassdesk/internal/shortcut"
)

// Server bridges HTTP clients to one desktop session.
type Server struct {
	desk   *desktop.Desktop
	engine *gin.Engine
	http   *http.Server
	hub    *hub
}

// New builds the server for the given listen address.
func New(desk *desktop.Desktop, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		desk:   desk,
		engine: engine,
		http:   &http.Server{Addr: addr, Handler: engine},
		hub:    newHub(desk),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.GET("/state", s.getState)
		api.GET("/windows", s.listWindows)
		api.POST("/windows", s.createWindow)
		api.POST("/windows/:id/focus", s.windowOp(func(reg *registry.Registry, id string) { reg.Focus(id) }))
		api.POST("/windows/:id/minimize", s.windowOp(func(reg *registry.Registry, id string) { reg.Minimize(id) }))
		api.POST("/windows/:id/maximize", s.windowOp(func(reg *registry.Registry, id string) { reg.Maximize(id) }))
		api.POST("/windows/:id/restore", s.windowOp(func(reg *registry.Registry, id string) { reg.Restore(id) }))
		api.POST("/windows/:id/close", s.closeWindow)
		api.POST("/windows/:id/snap", s.snapWindow)
		api.PATCH("/windows/:id/bounds", s.updateBounds)
		api.POST("/windows/cycle", s.cycleWindows)
		api.POST("/viewport", s.setViewport)
		api.POST("/input/key", s.keyInput)
	}
	s.engine.GET("/ws", s.hub.handleUpgrade)
}

// Start begins serving in the background.
func (s *Server) Start() error {
	ln, err := listen(s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	s.hub.start()

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("http server: %v", err)
		}
	}()
	log.Printf("http server listening on %s", ln.Addr())
	return nil
}

// Stop drains websocket clients and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.stop()
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

type createWindowRequest struct {
	AppID  string         `json:"app_id" binding:"required"`
	Title  string         `json:"title"`
	Bounds *geometry.Rect `json:"bounds"`
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.desk.Snapshot())
}

func (s *Server) listWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": s.desk.Registry().Snapshot(),
		"z_order": s.desk.Registry().ZOrder(),
	})
}

func (s *Server) createWindow(c *gin.Context) {
	var req createWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := s.desk.Registry().Create(req.AppID, registry.CreateOptions{
		Title:  req.Title,
		Bounds: req.Bounds,
	})
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// windowOp wraps the registry mutations that only need an existing id.
func (s *Server) windowOp(op func(*registry.Registry, string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		reg := s.desk.Registry()
		if _, ok := reg.Get(id); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown window"})
			return
		}
		op(reg, id)
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) closeWindow(c *gin.Context) {
	id := c.Param("id")
	reg := s.desk.Registry()
	if _, ok := reg.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown window"})
		return
	}
	force := c.Query("force") == "true"
	if !reg.Close(id, force) {
		c.JSON(http.StatusConflict, gin.H{"error": "window has unsaved state; retry with force=true"})
		return
	}
	c.Status(http.StatusNoContent)
}

type snapRequest struct {
	State string `json:"state" binding:"required"`
}

func (s *Server) snapWindow(c *gin.Context) {
	id := c.Param("id")
	reg := s.desk.Registry()
	if _, ok := reg.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown window"})
		return
	}

	var req snapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "state must be left, right, or maximized"})
		return
	}

	target := geometry.SnapTarget(zone, s.desk.Viewport(), reg.Metrics())
	reg.SnapTo(id, state, target)
	c.Status(http.StatusNoContent)
}

func (s *Server) updateBounds(c *gin.Context) {
	id := c.Param("id")
	reg := s.desk.Registry()
	if _, ok := reg.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown window"})
		return
	}

	var patch registry.BoundsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reg.UpdateBounds(id, patch)
	c.Status(http.StatusNoContent)
}

func (s *Server) cycleWindows(c *gin.Context) {
	shortcut.Cycle(s.desk.Registry())
	c.Status(http.StatusNoContent)
}

func (s *Server) setViewport(c *gin.Context) {
	var size geometry.Size
	if err := c.ShouldBindJSON(&size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if size.Width <= 0 || size.Height <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "width and height must be positive"})
		return
	}
	s.desk.SetViewport(size)
	c.Status(http.StatusNoContent)
}

type keyRequest struct {
	Action string `json:"action" binding:"required"` // "down", "up", or "blur"
	Key    string `json:"key"`
}

func (s *Server) keyInput(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case "down":
		c.JSON(http.StatusOK, gin.H{"prevent_default": s.desk.KeyDown(req.Key)})
	case "up":
		s.desk.KeyUp(req.Key)
		c.Status(http.StatusNoContent)
	case "blur":
		s.desk.Blur()
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be down, up, or blur"})
	}
}
