package server

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/glassdesk/glassdesk/internal/desktop"
	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/resize"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

func listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// hub fans desktop events out to every connected websocket client and feeds
// inbound pointer/keyboard messages into the desktop.
type hub struct {
	desk     *desktop.Desktop
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	unsub   func()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// inputMessage is what browsers send over the socket. Pointer messages drive
// the drag/resize controllers; key messages go through the shortcut path.
type inputMessage struct {
	Type     string `json:"type"`   // "pointer" or "key"
	Action   string `json:"action"` // pointer: drag_begin .. resize_cancel; key: down/up/blur
	WindowID string `json:"window_id,omitempty"`
	Handle   string `json:"handle,omitempty"`
	X        int    `json:"x,omitempty"`
	Y        int    `json:"y,omitempty"`
	Key      string `json:"key,omitempty"`
}

func newHub(desk *desktop.Desktop) *hub {
	return &hub{
		desk:    desk,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The daemon serves one local browser tab; cross-origin pages
			// on the same machine are part of the development workflow.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *hub) start() {
	h.unsub = h.desk.Bus().Subscribe(h.broadcast)
}

func (h *hub) stop() {
	if h.unsub != nil {
		h.unsub()
	}
	h.mu.Lock()
	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
}

func (h *hub) broadcast(ev eventbus.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("ws: failed to marshal event: %v", err)
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer; drop it rather than stall the event path.
			c.close()
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()
}

func (h *hub) handleUpgrade(gc *gin.Context) {
	conn, err := h.upgrader.Upgrade(gc.Writer, gc.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go h.readPump(c)
}

func (h *hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws: bad input message: %v", err)
			continue
		}
		h.dispatch(msg)
	}
}

func (h *hub) dispatch(msg inputMessage) {
	switch msg.Type {
	case "pointer":
		h.dispatchPointer(msg)
	case "key":
		switch msg.Action {
		case "down":
			h.desk.KeyDown(msg.Key)
		case "up":
			h.desk.KeyUp(msg.Key)
		case "blur":
			h.desk.Blur()
		}
	}
}

func (h *hub) dispatchPointer(msg inputMessage) {
	switch msg.Action {
	case "drag_begin":
		if err := h.desk.Drag().Begin(msg.WindowID, msg.X, msg.Y); err != nil {
			log.Printf("ws: %v", err)
		}
	case "drag_update":
		h.desk.Drag().Update(msg.X, msg.Y)
	case "drag_end":
		h.desk.Drag().End()
	case "drag_cancel":
		h.desk.Drag().Cancel()
	case "resize_begin":
		if err := h.desk.Resize().Begin(msg.WindowID, resize.Handle(msg.Handle), msg.X, msg.Y); err != nil {
			log.Printf("ws: %v", err)
		}
	case "resize_update":
		h.desk.Resize().Update(msg.X, msg.Y)
	case "resize_end":
		h.desk.Resize().End()
	case "resize_cancel":
		h.desk.Resize().Cancel()
	}
}

func (c *client) writePump() {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}
