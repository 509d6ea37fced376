package frame

import (
	"sync"
	"time"
)

// DefaultInterval approximates one frame at display refresh rate.
const DefaultInterval = 16 * time.Millisecond

// Coalescer collapses a burst of update requests into at most one flush per
// tick. The first request in a quiet period flushes immediately; requests
// arriving inside the following tick are folded into a single trailing flush.
// Callers record their latest state themselves and treat flush as "commit
// whatever is current now".
type Coalescer struct {
	interval time.Duration
	flush    func()

	mu    sync.Mutex
	armed bool
	dirty bool
	timer *time.Timer
}

// New creates a coalescer invoking flush at most once per interval. An
// interval <= 0 disables throttling entirely: every request flushes
// synchronously, which keeps tests deterministic.
func New(interval time.Duration, flush func()) *Coalescer {
	return &Coalescer{interval: interval, flush: flush}
}

// Request asks for a flush. Outside a tick it flushes on the caller's
// goroutine; inside a tick it marks the pending state dirty for the trailing
// flush.
func (c *Coalescer) Request() {
	if c.interval <= 0 {
		c.flush()
		return
	}

	c.mu.Lock()
	if c.armed {
		c.dirty = true
		c.mu.Unlock()
		return
	}
	c.armed = true
	c.timer = time.AfterFunc(c.interval, c.tick)
	c.mu.Unlock()

	c.flush()
}

func (c *Coalescer) tick() {
	c.mu.Lock()
	if !c.dirty {
		c.armed = false
		c.mu.Unlock()
		return
	}
	c.dirty = false
	c.timer = time.AfterFunc(c.interval, c.tick)
	c.mu.Unlock()

	c.flush()
}

// Flush commits any pending state immediately and disarms the current tick.
// Used when a gesture ends and the final position must not wait for a timer.
func (c *Coalescer) Flush() {
	if c.interval <= 0 {
		return
	}

	c.mu.Lock()
	dirty := c.dirty
	c.dirty = false
	c.armed = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if dirty {
		c.flush()
	}
}

// Stop discards pending state without flushing.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
	c.armed = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
