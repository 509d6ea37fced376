// Package overlay derives the snap-preview state shown while a window drags
// across an edge trigger. It is a passive listener: the drag controller
// broadcasts pointer zones and the presenter turns them into a rectangle a
// renderer can paint.
package overlay

import (
	"sync"

	"github.com/glassdesk/glassdesk/internal/drag"
	"github.com/glassdesk/glassdesk/internal/eventbus"
	"github.com/glassdesk/glassdesk/internal/geometry"
)

// State is what a renderer needs to draw the snap preview.
type State struct {
	Visible  bool          `json:"visible"`
	WindowID string        `json:"window_id,omitempty"`
	Zone     geometry.Zone `json:"zone"`
	Target   geometry.Rect `json:"target"`
}

// Presenter tracks the live snap preview for the current drag session.
type Presenter struct {
	viewport func() geometry.Size
	metrics  func() geometry.Metrics
	onChange func(State)
	unsub    func()

	mu    sync.Mutex
	state State
}

// New subscribes the presenter to the bus. onChange fires on every visible
// transition and zone change; it may be nil when callers prefer polling State.
func New(bus *eventbus.Bus, viewport func() geometry.Size, metrics func() geometry.Metrics, onChange func(State)) *Presenter {
	p := &Presenter{
		viewport: viewport,
		metrics:  metrics,
		onChange: onChange,
	}
	p.unsub = bus.Subscribe(p.handle)
	return p
}

// Close detaches the presenter from the bus.
func (p *Presenter) Close() {
	p.unsub()
}

// State returns the current preview state.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Presenter) handle(ev eventbus.Event) {
	switch ev.Type {
	case eventbus.DragMoved:
		moved, ok := ev.Data.(drag.Moved)
		if !ok {
			return
		}
		next := State{Zone: moved.Zone, WindowID: ev.WindowID}
		if moved.Zone != geometry.ZoneNone {
			next.Visible = true
			next.Target = geometry.SnapTarget(moved.Zone, p.viewport(), p.metrics())
		}
		p.set(next)
	case eventbus.DragEnded, eventbus.DragCancelled:
		p.set(State{})
	}
}

func (p *Presenter) set(next State) {
	p.mu.Lock()
	changed := next != p.state
	p.state = next
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(next)
	}
}
