// Package tui is the terminal front end. Which screens can be mounted is
// decided by a navigation.Gate fed from the session manager; screens never
// navigate across groups themselves.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/logging"
	"github.com/jask/taskpad/internal/navigation"
	"github.com/jask/taskpad/internal/service"
	"github.com/jask/taskpad/internal/session"
)

// Deps is everything the UI talks to.
type Deps struct {
	Session *session.Manager
	API     *api.Client
	Tasks   *service.TaskService
	Log     *slog.Logger
	// PrefsDir holds the last signed-in email. Empty disables it.
	PrefsDir string
	// Send delivers messages from outside the update loop, usually
	// (*tea.Program).Send.
	Send func(tea.Msg)
}

// env is shared by every screen.
type env struct {
	Deps
	ctx  context.Context
	keys *KeyRegistry
}

type Model struct {
	env       *env
	gate      *navigation.Gate
	detach    func()
	screens   ScreenStack
	group     navigation.Group
	width     int
	height    int
	status    string
	statusErr bool
	quitting  bool
}

// New wires a gate to deps.Session. Nothing is mounted until the session
// finishes loading.
func New(ctx context.Context, deps Deps) Model {
	deps.Log = logging.Component(deps.Log, "tui")
	e := &env{Deps: deps, ctx: ctx, keys: NewKeyRegistry(DefaultKeyBindings())}
	m := Model{env: e, width: 80, height: 24}
	m.gate = navigation.NewGate(func(sw navigation.Switch) {
		if e.Send != nil {
			e.Send(SwitchMsg(sw))
		}
	})
	m.detach = m.gate.Attach(deps.Session)
	m.group = m.gate.Current()
	return m
}

// Close stops following the session.
func (m Model) Close() {
	if m.detach != nil {
		m.detach()
	}
}

func (m Model) Init() tea.Cmd {
	return m.boot()
}

func (m Model) boot() tea.Cmd {
	e := m.env
	return func() tea.Msg {
		return bootedMsg{err: e.Session.Initialize(e.ctx)}
	}
}

func (m *Model) SetStatus(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) SetError(err error) {
	if err == nil {
		m.status = ""
		m.statusErr = false
		return
	}
	m.status = err.Error()
	m.statusErr = true
}

func (m Model) ActiveScope() string {
	if top := m.screens.Top(); top != nil {
		return top.Scope()
	}
	return "app"
}

// mount discards the current group's screens and shows g's entry screen.
func (m *Model) mount(g navigation.Group) tea.Cmd {
	m.group = g
	m.screens.Reset()
	var s Screen
	switch g.Entry() {
	case navigation.ScreenLogin:
		s = newLoginScreen(m.env)
	case navigation.ScreenTasks:
		s = newTasksScreen(m.env)
	default:
		return nil
	}
	m.screens.Push(s)
	return initScreen(s)
}

func (m *Model) push(s Screen) tea.Cmd {
	if !m.group.Allows(s.Name()) {
		m.env.Log.Warn("screen not allowed in group",
			slog.String("screen", string(s.Name())), slog.String("group", m.group.String()))
		return nil
	}
	m.screens.Push(s)
	return initScreen(s)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case StatusMsg:
		m.status = msg.Text
		m.statusErr = msg.IsErr
		return m, nil
	case bootedMsg:
		if msg.err != nil {
			m.SetError(errors.New("could not read the saved session, please sign in"))
		}
		return m, nil
	case SwitchMsg:
		cmd := m.mount(msg.To)
		switch msg.Reason {
		case session.ReasonLogin:
			m.SetStatus("Signed in")
		case session.ReasonLogout:
			m.SetStatus("Signed out")
		}
		return m, cmd
	case pushScreenMsg:
		return m, m.push(msg.screen)
	case logoutResultMsg:
		if msg.err != nil {
			m.SetError(fmt.Errorf("signed out, but the saved token could not be removed: %w", msg.err))
		}
		return m, nil
	case tea.KeyMsg:
		if m.env.keys.IsAction(msg, "quit", m.ActiveScope()) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, m.updateTop(msg)
}

func (m *Model) updateTop(msg tea.Msg) tea.Cmd {
	top := m.screens.Top()
	if top == nil {
		return nil
	}
	next, cmd, pop := top.Update(msg)
	if pop {
		m.screens.Pop()
		return cmd
	}
	m.screens.ReplaceTop(next)
	return cmd
}

// logoutCmd clears the session. Navigation follows from the gate.
func logoutCmd(e *env) tea.Cmd {
	return func() tea.Msg {
		return logoutResultMsg{err: e.Session.Logout(e.ctx)}
	}
}
