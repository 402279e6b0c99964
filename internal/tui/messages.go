package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/navigation"
)

type StatusMsg struct {
	Text  string
	IsErr bool
}

func StatusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		if err == nil {
			return StatusMsg{}
		}
		return StatusMsg{Text: err.Error(), IsErr: true}
	}
}

// SwitchMsg carries a navigation gate switch into the update loop.
type SwitchMsg navigation.Switch

type pushScreenMsg struct {
	screen Screen
}

func pushCmd(s Screen) tea.Cmd {
	return func() tea.Msg { return pushScreenMsg{screen: s} }
}

type bootedMsg struct{ err error }

type loginResultMsg struct {
	email string
	err   error
}

type registerResultMsg struct {
	email string
	err   error
}

// registeredMsg reaches the login screen after the register screen closes.
type registeredMsg struct{ email string }

type logoutResultMsg struct{ err error }

type tasksLoadedMsg struct {
	tasks []api.Task
	err   error
}

type taskSavedMsg struct {
	task api.Task
	err  error
}

// tasksChangedMsg asks the task list to reload, reporting err if the change failed.
type tasksChangedMsg struct {
	note string
	err  error
}
