// Package navigation decides which screen group is reachable from the
// current session.
package navigation

import (
	"sync"

	"github.com/jask/taskpad/internal/session"
)

// Group is a set of screens mounted together.
type Group int

const (
	// GroupNone renders nothing. It is selected while the session loads.
	GroupNone Group = iota
	GroupUnauthenticated
	GroupAuthenticated
)

func (g Group) String() string {
	switch g {
	case GroupUnauthenticated:
		return "unauthenticated"
	case GroupAuthenticated:
		return "authenticated"
	default:
		return "none"
	}
}

// Screen names a screen inside a group.
type Screen string

const (
	ScreenLogin    Screen = "login"
	ScreenRegister Screen = "register"
	ScreenTasks    Screen = "tasks"
	ScreenTaskForm Screen = "task-form"
)

var groupScreens = map[Group][]Screen{
	GroupUnauthenticated: {ScreenLogin, ScreenRegister},
	GroupAuthenticated:   {ScreenTasks, ScreenTaskForm},
}

// Entry is the first screen mounted for g, or "" for GroupNone.
func (g Group) Entry() Screen {
	if s := groupScreens[g]; len(s) > 0 {
		return s[0]
	}
	return ""
}

// Allows reports whether s belongs to g.
func (g Group) Allows(s Screen) bool {
	for _, candidate := range groupScreens[g] {
		if candidate == s {
			return true
		}
	}
	return false
}

// Select maps a session snapshot to the group that may be shown.
func Select(s session.Snapshot) Group {
	switch s.State() {
	case session.Authenticated:
		return GroupAuthenticated
	case session.Unauthenticated:
		return GroupUnauthenticated
	default:
		return GroupNone
	}
}

// Switch describes a group change. Everything mounted for From is discarded
// and To.Entry() is mounted.
type Switch struct {
	From   Group
	To     Group
	Reason session.Reason
}

// Gate tracks the selected group and reports switches. It holds no reference
// to the session; it is fed changes by subscribing to a Manager.
type Gate struct {
	mu       sync.Mutex
	current  Group
	onSwitch func(Switch)
}

// NewGate starts at GroupNone. onSwitch is called for every group change.
func NewGate(onSwitch func(Switch)) *Gate {
	return &Gate{onSwitch: onSwitch}
}

// Current is the selected group.
func (g *Gate) Current() Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Observe re-evaluates the gate for a session change.
func (g *Gate) Observe(c session.Change) {
	next := Select(c.To)
	g.mu.Lock()
	prev := g.current
	g.current = next
	g.mu.Unlock()

	if prev != next && g.onSwitch != nil {
		g.onSwitch(Switch{From: prev, To: next, Reason: c.Reason})
	}
}

// Attach subscribes the gate to m and syncs it with m's current snapshot.
func (g *Gate) Attach(m *session.Manager) (detach func()) {
	detach = m.Subscribe(g.Observe)
	g.mu.Lock()
	g.current = Select(m.Snapshot())
	g.mu.Unlock()
	return detach
}
