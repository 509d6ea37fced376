// Package shortcut routes keyboard chords to actions. The router tracks the
// live set of pressed keys and, on every key-down, picks the most specific
// registered combination that is fully held and allowed in the active
// context.
package shortcut

import (
	"log"
	"sync"
)

// Shortcut binds a key combination to an action. Keys must be normalized;
// use ParseChord for combo strings. Global shortcuts fire in any context,
// otherwise Context must equal the router's active context. Action errors
// and panics are logged, never propagated to the input path.
type Shortcut struct {
	ID             string
	Keys           []string
	Context        string
	Global         bool
	PreventDefault bool
	Action         func() error
}

type registered struct {
	Shortcut
	seq int
}

// Router is the chord dispatcher. All methods are safe for concurrent use.
type Router struct {
	context func() string

	mu       sync.Mutex
	pressed  map[string]bool
	builtins []Shortcut
	extras   []registered
	seq      int
}

// NewRouter builds a router. context reports the active UI context; nil means
// only global shortcuts ever fire.
func NewRouter(context func() string) *Router {
	return &Router{
		context: context,
		pressed: make(map[string]bool),
	}
}

// SetBuiltins installs the system shortcut set, replacing any previous one.
func (r *Router) SetBuiltins(shortcuts []Shortcut) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins = shortcuts
}

// Register adds a caller-supplied shortcut and returns its removal function.
func (r *Router) Register(s Shortcut) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	reg := registered{Shortcut: s, seq: r.seq}
	r.extras = append(r.extras, reg)

	seq := reg.seq
	var once sync.Once
	return func() {
		once.Do(func() { r.unregister(seq) })
	}
}

func (r *Router) unregister(seq int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, reg := range r.extras {
		if reg.seq == seq {
			r.extras = append(r.extras[:i], r.extras[i+1:]...)
			return
		}
	}
}

// KeyDown records a pressed key and dispatches the best-matching shortcut.
// It reports whether the event's default behavior should be suppressed.
func (r *Router) KeyDown(raw string) bool {
	key := Normalize(raw)
	if key == "" {
		return false
	}

	active := ""
	if r.context != nil {
		active = r.context()
	}

	r.mu.Lock()
	r.pressed[key] = true

	var best *Shortcut
	consider := func(s Shortcut) {
		if len(s.Keys) == 0 || !r.heldLocked(s.Keys) {
			return
		}
		if !s.Global && s.Context != active {
			return
		}
		if best == nil || len(s.Keys) > len(best.Keys) {
			cp := s
			best = &cp
		}
	}
	for _, s := range r.builtins {
		consider(s)
	}
	for _, reg := range r.extras {
		consider(reg.Shortcut)
	}
	r.mu.Unlock()

	if best == nil {
		return false
	}
	run(*best)
	return best.PreventDefault
}

// KeyUp removes a key from the pressed set.
func (r *Router) KeyUp(raw string) {
	key := Normalize(raw)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pressed, key)
}

// Blur clears the entire pressed set. Keys released while focus was elsewhere
// would otherwise appear held forever.
func (r *Router) Blur() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pressed = make(map[string]bool)
}

// IsPressed reports whether the normalized key is currently held.
func (r *Router) IsPressed(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pressed[Normalize(key)]
}

// Pressed returns a snapshot of the held keys.
func (r *Router) Pressed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.pressed))
	for k := range r.pressed {
		keys = append(keys, k)
	}
	return keys
}

func (r *Router) heldLocked(keys []string) bool {
	for _, k := range keys {
		if !r.pressed[k] {
			return false
		}
	}
	return true
}

func run(s Shortcut) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("shortcut %s: action panicked: %v", s.ID, rec)
		}
	}()
	if s.Action == nil {
		return
	}
	if err := s.Action(); err != nil {
		log.Printf("shortcut %s: %v", s.ID, err)
	}
}
