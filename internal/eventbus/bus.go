package eventbus

import (
	"log"
	"sync"
)

// Type identifies a class of desktop event.
type Type string

const (
	WindowCreated   Type = "window.created"
	WindowClosed    Type = "window.closed"
	WindowFocused   Type = "window.focused"
	WindowMinimized Type = "window.minimized"
	WindowMaximized Type = "window.maximized"
	WindowRestored  Type = "window.restored"
	WindowMoved     Type = "window.moved"
	WindowResized   Type = "window.resized"
	WindowSnapped   Type = "window.snapped"
	WindowTitled    Type = "window.titled"
	DragStarted     Type = "drag.started"
	DragMoved       Type = "drag.moved"
	DragEnded       Type = "drag.ended"
	DragCancelled   Type = "drag.cancelled"
	ResizeStarted   Type = "resize.started"
	ResizeEnded     Type = "resize.ended"
	ResizeCancelled Type = "resize.cancelled"
	ViewportResized Type = "viewport.resized"
	StartMenuOpened Type = "startmenu.opened"
	StartMenuClosed Type = "startmenu.closed"
	Announcement    Type = "announcement"
)

// Event is a single broadcast notification. WindowID is empty for events that
// are not about a particular window; Data carries an event-specific payload.
type Event struct {
	Type     Type        `json:"type"`
	WindowID string      `json:"window_id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(Event)

// Bus is a minimal subscribe/publish fan-out. Every Subscribe returns the
// matching unsubscribe function, so ownership of a listener's lifetime is
// always explicit at the subscription site.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its unsubscribe function. Calling
// the returned function more than once is safe.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
		})
	}
}

// Publish delivers the event to every current subscriber. A panicking handler
// is logged and does not prevent delivery to the rest.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		deliver(h, ev)
	}
}

func deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("eventbus: handler panic on %s: %v", ev.Type, r)
		}
	}()
	h(ev)
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
