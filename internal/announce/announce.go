// Package announce carries human-readable event descriptions from the window
// manager core to whatever surfaces them to assistive technology. The core
// only produces the message and a priority; delivery is the consumer's job.
package announce

import (
	"log"

	"github.com/glassdesk/glassdesk/internal/eventbus"
)

// Priority indicates how urgently a message should be surfaced.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// Message is a single announcement.
type Message struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Announcer accepts announcements from the core.
type Announcer interface {
	Announce(text string, priority Priority)
}

// Bus publishes announcements on the desktop event bus, where the websocket
// bridge (and any other subscriber) picks them up.
type Bus struct {
	bus *eventbus.Bus
}

// NewBus creates an announcer backed by the given event bus.
func NewBus(bus *eventbus.Bus) *Bus {
	return &Bus{bus: bus}
}

// Announce implements Announcer.
func (b *Bus) Announce(text string, priority Priority) {
	b.bus.Publish(eventbus.Event{
		Type: eventbus.Announcement,
		Data: Message{Text: text, Priority: priority},
	})
}

// Log writes announcements to the process log. Used when no front end is
// attached (status CLI, tests with -v).
type Log struct{}

// Announce implements Announcer.
func (Log) Announce(text string, priority Priority) {
	log.Printf("announce [%s]: %s", priority, text)
}

// Nop discards announcements.
type Nop struct{}

// Announce implements Announcer.
func (Nop) Announce(string, Priority) {}
