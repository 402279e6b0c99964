package tui

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/navigation"
	"github.com/jask/taskpad/internal/prefs"
	"github.com/jask/taskpad/internal/session"
)

type loginScreen struct {
	env    *env
	inputs []textinput.Model
	focus  int
	busy   bool
	notice string
	err    string
}

func newLoginScreen(e *env) *loginScreen {
	s := &loginScreen{env: e, inputs: credentialInputs("Email", "Password")}
	if e.PrefsDir != "" {
		email, err := prefs.LoadLastUser(e.PrefsDir)
		if err != nil {
			e.Log.Warn("last user unreadable", slog.Any("err", err))
		}
		if email != "" {
			s.inputs[0].SetValue(email)
			s.setFocus(1)
		}
	}
	return s
}

// credentialInputs builds an email field followed by password fields.
func credentialInputs(labels ...string) []textinput.Model {
	inputs := make([]textinput.Model, 0, len(labels))
	for i, label := range labels {
		inp := textinput.New()
		inp.Prompt = label + ": "
		inp.CharLimit = 256
		if i > 0 {
			inp.EchoMode = textinput.EchoPassword
			inp.EchoCharacter = '•'
		}
		if i == 0 {
			inp.Focus()
		}
		inputs = append(inputs, inp)
	}
	return inputs
}

func (s *loginScreen) Name() navigation.Screen { return navigation.ScreenLogin }
func (s *loginScreen) Scope() string           { return scopeLogin }
func (s *loginScreen) Title() string           { return "Sign in" }

func (s *loginScreen) setFocus(i int) {
	s.inputs[s.focus].Blur()
	s.focus = (i + len(s.inputs)) % len(s.inputs)
	s.inputs[s.focus].Focus()
}

func (s *loginScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	keys := s.env.keys
	switch msg := msg.(type) {
	case loginResultMsg:
		s.busy = false
		if msg.err != nil {
			s.err = loginErrorText(msg.err)
			s.inputs[1].SetValue("")
			s.setFocus(1)
		}
		return s, nil, false
	case registeredMsg:
		s.inputs[0].SetValue(msg.email)
		s.inputs[1].SetValue("")
		s.setFocus(1)
		s.err = ""
		s.notice = "Account created. Sign in to continue."
		return s, nil, false
	case tea.KeyMsg:
		if s.busy {
			return s, nil, false
		}
		switch {
		case keys.IsAction(msg, "next-field", s.Scope()):
			s.setFocus(s.focus + 1)
			return s, nil, false
		case keys.IsAction(msg, "prev-field", s.Scope()):
			s.setFocus(s.focus - 1)
			return s, nil, false
		case keys.IsAction(msg, "register", s.Scope()):
			return s, pushCmd(newRegisterScreen(s.env, s.inputs[0].Value())), false
		case keys.IsAction(msg, "submit", s.Scope()):
			return s, s.submit(), false
		}
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd, false
}

// submit sends the credentials unless a request is already in flight.
func (s *loginScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.inputs[0].Value())
	password := s.inputs[1].Value()
	if email == "" {
		s.setFocus(0)
		return nil
	}
	if password == "" {
		s.setFocus(1)
		return nil
	}
	s.busy = true
	s.err = ""
	s.notice = ""
	e := s.env
	return func() tea.Msg {
		res, err := e.API.Login(e.ctx, email, password)
		if err != nil {
			return loginResultMsg{email: email, err: err}
		}
		if err := e.Session.Login(e.ctx, res.AccessToken); err != nil {
			return loginResultMsg{email: email, err: err}
		}
		if e.PrefsDir != "" {
			if err := prefs.SaveLastUser(e.PrefsDir, email); err != nil {
				e.Log.Warn("remember last user failed", slog.Any("err", err))
			}
		}
		return loginResultMsg{email: email}
	}
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, api.ErrAuthRejected):
		return "Invalid email or password."
	case errors.Is(err, session.ErrStorageWrite):
		return "Could not save your session. Try again."
	default:
		return "Sign in failed: " + err.Error()
	}
}

func (s *loginScreen) View(width, height int) string {
	lines := []string{titleStyle.Render("Sign in"), ""}
	for _, in := range s.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "")
	switch {
	case s.busy:
		lines = append(lines, mutedStyle.Render("Signing in…"))
	case s.err != "":
		lines = append(lines, errorStyle.Render(s.err))
	case s.notice != "":
		lines = append(lines, mutedStyle.Render(s.notice))
	default:
		lines = append(lines, mutedStyle.Render("enter: sign in   ctrl+r: create account"))
	}
	for i := range lines {
		lines[i] = truncate(lines[i], width-4)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
