// Package focusnav keeps the desktop's own tab-stop sequence: desktop icons,
// taskbar buttons, visible windows, and open start-menu items form one ordered
// list regardless of how the rendering layer orders its elements. Arrow keys
// additionally walk desktop icons by their on-screen layout.
package focusnav

import (
	"sort"
	"sync"

	"github.com/glassdesk/glassdesk/internal/geometry"
	"github.com/glassdesk/glassdesk/internal/registry"
)

// ElementType classifies a focusable element. The zero ordering of the
// constants below is also the tab order between types.
type ElementType string

const (
	TypeDesktopIcon   ElementType = "desktop-icon"
	TypeTaskbarButton ElementType = "taskbar-button"
	TypeWindow        ElementType = "window"
	TypeStartMenuItem ElementType = "start-menu-item"
)

func typeRank(t ElementType) int {
	switch t {
	case TypeDesktopIcon:
		return 0
	case TypeTaskbarButton:
		return 1
	case TypeWindow:
		return 2
	case TypeStartMenuItem:
		return 3
	}
	return 4
}

// Direction is a spatial arrow-navigation direction.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Element is one registered focus target. Bounds are only consulted for
// desktop icons, where they drive spatial arrow navigation.
type Element struct {
	ID       string
	Type     ElementType
	Priority int
	Bounds   geometry.Rect
}

type entry struct {
	Element
	seq int
}

// Options wires the manager to the rest of the desktop. Registry filters
// minimized windows out of the tab order; MenuOpen gates start-menu items.
type Options struct {
	Registry      *registry.Registry
	MenuOpen      func() bool
	CloseMenu     func()
	StartButtonID string
	// OnFocus is invoked whenever the manager moves focus to an element.
	OnFocus func(Element)
	// RowTolerance treats icons whose top edges differ by at most this many
	// pixels as the same row. Zero means exact-row matching.
	RowTolerance int
}

// Manager is the focusable-element registry. A disabled manager accepts
// registrations but hands out inert cleanups and never moves focus.
type Manager struct {
	opts    Options
	mu      sync.Mutex
	enabled bool
	items   []entry
	seq     int
	current string
}

func New(opts Options) *Manager {
	return &Manager{opts: opts, enabled: true}
}

// SetEnabled turns the whole manager on or off, for modal states that take
// over keyboard handling entirely.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Register adds an element and returns its removal function. Registering and
// immediately unregistering is safe; the cleanup is idempotent.
func (m *Manager) Register(el Element) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return func() {}
	}
	m.seq++
	e := entry{Element: el, seq: m.seq}
	m.items = append(m.items, e)

	seq := e.seq
	var once sync.Once
	return func() {
		once.Do(func() { m.remove(seq) })
	}
}

func (m *Manager) remove(seq int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.items {
		if e.seq == seq {
			if m.current == e.ID {
				m.current = ""
			}
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

// OrderedList returns the live tab sequence: visible elements sorted by
// priority, then by type, then by registration order.
func (m *Manager) OrderedList() []Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orderedLocked()
}

func (m *Manager) orderedLocked() []Element {
	menuOpen := m.opts.MenuOpen != nil && m.opts.MenuOpen()

	live := make([]entry, 0, len(m.items))
	for _, e := range m.items {
		switch e.Type {
		case TypeWindow:
			if m.opts.Registry != nil {
				if win, ok := m.opts.Registry.Get(e.ID); ok && win.Minimized {
					continue
				}
			}
		case TypeStartMenuItem:
			if !menuOpen {
				continue
			}
		}
		live = append(live, e)
	}

	sort.SliceStable(live, func(i, j int) bool {
		if live[i].Priority != live[j].Priority {
			return live[i].Priority < live[j].Priority
		}
		ri, rj := typeRank(live[i].Type), typeRank(live[j].Type)
		if ri != rj {
			return ri < rj
		}
		return live[i].seq < live[j].seq
	})

	out := make([]Element, len(live))
	for i, e := range live {
		out[i] = e.Element
	}
	return out
}

// Current returns the id the manager last moved focus to, if it is still
// registered and visible.
func (m *Manager) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == "" {
		return "", false
	}
	for _, e := range m.orderedLocked() {
		if e.ID == m.current {
			return m.current, true
		}
	}
	return "", false
}

// SetCurrent records focus moved by something other than the manager, for
// example a pointer click, so the next Tab continues from there.
func (m *Manager) SetCurrent(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = id
}

// FocusNext moves focus to the element after the current one, wrapping to the
// front past the end. With no current element it behaves like FocusFirst.
func (m *Manager) FocusNext() { m.step(1) }

// FocusPrevious moves focus backwards, wrapping at the front.
func (m *Manager) FocusPrevious() { m.step(-1) }

func (m *Manager) step(delta int) {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	list := m.orderedLocked()
	if len(list) == 0 {
		m.mu.Unlock()
		return
	}

	idx := -1
	for i, e := range list {
		if e.ID == m.current {
			idx = i
			break
		}
	}
	var next Element
	switch {
	case idx < 0 && delta > 0:
		next = list[0]
	case idx < 0:
		next = list[len(list)-1]
	default:
		next = list[(idx+delta+len(list))%len(list)]
	}
	m.current = next.ID
	m.mu.Unlock()

	m.notify(next)
}

// FocusFirst jumps to the head of the tab sequence.
func (m *Manager) FocusFirst() { m.jump(func(list []Element) Element { return list[0] }) }

// FocusLast jumps to the tail of the tab sequence.
func (m *Manager) FocusLast() { m.jump(func(list []Element) Element { return list[len(list)-1] }) }

func (m *Manager) jump(pick func([]Element) Element) {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	list := m.orderedLocked()
	if len(list) == 0 {
		m.mu.Unlock()
		return
	}
	el := pick(list)
	m.current = el.ID
	m.mu.Unlock()

	m.notify(el)
}

// FocusElement jumps straight to id. Unknown or filtered-out ids are a silent
// no-op.
func (m *Manager) FocusElement(id string) {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	for _, e := range m.orderedLocked() {
		if e.ID == id {
			m.current = id
			m.mu.Unlock()
			m.notify(e)
			return
		}
	}
	m.mu.Unlock()
}

// HandleTab redirects a document-level Tab press through the manager.
func (m *Manager) HandleTab(shift bool) {
	if shift {
		m.FocusPrevious()
	} else {
		m.FocusNext()
	}
}

// HandleEscape closes the start menu and returns focus to the start button.
// It reports whether the key was consumed.
func (m *Manager) HandleEscape() bool {
	if m.opts.MenuOpen == nil || !m.opts.MenuOpen() {
		return false
	}
	if m.opts.CloseMenu != nil {
		m.opts.CloseMenu()
	}
	if m.opts.StartButtonID != "" {
		m.FocusElement(m.opts.StartButtonID)
	}
	return true
}

// MoveIcon walks desktop icons spatially. Up and Down pick the nearest icon
// in a strictly different row; Left and Right step through the scan order.
// Non-icon focus or an empty icon set is a no-op.
func (m *Manager) MoveIcon(dir Direction) {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	icons := m.iconsLocked()
	if len(icons) == 0 {
		m.mu.Unlock()
		return
	}

	idx := -1
	for i, e := range icons {
		if e.ID == m.current {
			idx = i
			break
		}
	}
	if idx < 0 {
		el := icons[0]
		m.current = el.ID
		m.mu.Unlock()
		m.notify(el)
		return
	}

	var next Element
	found := false
	switch dir {
	case DirLeft:
		if idx > 0 {
			next, found = icons[idx-1], true
		}
	case DirRight:
		if idx < len(icons)-1 {
			next, found = icons[idx+1], true
		}
	case DirUp, DirDown:
		next, found = nearestRow(icons, idx, dir, m.opts.RowTolerance)
	}
	if !found {
		m.mu.Unlock()
		return
	}
	m.current = next.ID
	m.mu.Unlock()

	m.notify(next)
}

func (m *Manager) iconsLocked() []Element {
	all := m.orderedLocked()
	icons := all[:0:0]
	for _, e := range all {
		if e.Type == TypeDesktopIcon {
			icons = append(icons, e)
		}
	}
	return icons
}

// nearestRow finds the closest icon whose top edge sits beyond the current
// row in the requested direction, breaking ties by horizontal distance.
func nearestRow(icons []Element, idx int, dir Direction, tolerance int) (Element, bool) {
	cur := icons[idx]
	var best Element
	bestDY, bestDX := -1, -1

	for i, cand := range icons {
		if i == idx {
			continue
		}
		dy := cand.Bounds.Y - cur.Bounds.Y
		if dir == DirUp {
			dy = -dy
		}
		if dy <= tolerance {
			continue
		}
		dx := cand.Bounds.X - cur.Bounds.X
		if dx < 0 {
			dx = -dx
		}
		if bestDY < 0 || dy < bestDY || (dy == bestDY && dx < bestDX) {
			best, bestDY, bestDX = cand, dy, dx
		}
	}
	return best, bestDY >= 0
}

func (m *Manager) notify(el Element) {
	if m.opts.OnFocus != nil {
		m.opts.OnFocus(el)
	}
}
