package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/navigation"
)

type registerScreen struct {
	env    *env
	inputs []textinput.Model
	focus  int
	busy   bool
	err    string
}

func newRegisterScreen(e *env, email string) *registerScreen {
	s := &registerScreen{env: e, inputs: credentialInputs("Email", "Password", "Confirm")}
	s.inputs[0].SetValue(email)
	return s
}

func (s *registerScreen) Name() navigation.Screen { return navigation.ScreenRegister }
func (s *registerScreen) Scope() string           { return scopeRegister }
func (s *registerScreen) Title() string           { return "Create account" }

func (s *registerScreen) setFocus(i int) {
	s.inputs[s.focus].Blur()
	s.focus = (i + len(s.inputs)) % len(s.inputs)
	s.inputs[s.focus].Focus()
}

func (s *registerScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	keys := s.env.keys
	switch msg := msg.(type) {
	case registerResultMsg:
		s.busy = false
		if msg.err != nil {
			s.err = registerErrorText(msg.err)
			return s, nil, false
		}
		email := msg.email
		return s, func() tea.Msg { return registeredMsg{email: email} }, true
	case tea.KeyMsg:
		if s.busy {
			return s, nil, false
		}
		switch {
		case keys.IsAction(msg, "back", s.Scope()):
			return s, nil, true
		case keys.IsAction(msg, "next-field", s.Scope()):
			s.setFocus(s.focus + 1)
			return s, nil, false
		case keys.IsAction(msg, "prev-field", s.Scope()):
			s.setFocus(s.focus - 1)
			return s, nil, false
		case keys.IsAction(msg, "submit", s.Scope()):
			return s, s.submit(), false
		}
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd, false
}

func (s *registerScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.inputs[0].Value())
	password, confirm := s.inputs[1].Value(), s.inputs[2].Value()
	switch {
	case email == "" || !strings.Contains(email, "@"):
		s.err = "Enter a valid email address."
		s.setFocus(0)
		return nil
	case password == "":
		s.err = "Choose a password."
		s.setFocus(1)
		return nil
	case password != confirm:
		s.err = "Passwords do not match."
		s.inputs[2].SetValue("")
		s.setFocus(2)
		return nil
	}
	s.busy = true
	s.err = ""
	e := s.env
	return func() tea.Msg {
		return registerResultMsg{email: email, err: e.API.Register(e.ctx, email, password)}
	}
}

func registerErrorText(err error) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	return "Registration failed: " + err.Error()
}

func (s *registerScreen) View(width, height int) string {
	lines := []string{titleStyle.Render("Create account"), ""}
	for _, in := range s.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "")
	switch {
	case s.busy:
		lines = append(lines, mutedStyle.Render("Creating account…"))
	case s.err != "":
		lines = append(lines, errorStyle.Render(s.err))
	default:
		lines = append(lines, mutedStyle.Render("enter: create   esc: back to sign in"))
	}
	for i := range lines {
		lines[i] = truncate(lines[i], width-4)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
