package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/navigation"
)

type tasksScreen struct {
	env        *env
	tasks      []api.Task
	cursor     int
	loading    bool
	confirming bool
	signingOut bool
	err        error
}

func newTasksScreen(e *env) *tasksScreen {
	return &tasksScreen{env: e, loading: true}
}

func (s *tasksScreen) Name() navigation.Screen { return navigation.ScreenTasks }
func (s *tasksScreen) Title() string           { return "Tasks" }

func (s *tasksScreen) Scope() string {
	if s.confirming {
		return scopeConfirm
	}
	return scopeTasks
}

func (s *tasksScreen) Init() tea.Cmd { return s.load() }

func (s *tasksScreen) load() tea.Cmd {
	s.loading = true
	e := s.env
	return func() tea.Msg {
		tasks, err := e.Tasks.List(e.ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (s *tasksScreen) selected() (api.Task, bool) {
	if s.cursor < 0 || s.cursor >= len(s.tasks) {
		return api.Task{}, false
	}
	return s.tasks[s.cursor], true
}

func (s *tasksScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		s.loading = false
		s.err = msg.err
		if msg.err != nil {
			return s, taskErrorCmd(msg.err), false
		}
		s.tasks = msg.tasks
		s.cursor = min(s.cursor, max(0, len(s.tasks)-1))
		return s, nil, false
	case tasksChangedMsg:
		if msg.err != nil {
			return s, tea.Batch(taskErrorCmd(msg.err), s.load()), false
		}
		var status tea.Cmd
		if msg.note != "" {
			status = StatusCmd(msg.note)
		}
		return s, tea.Batch(status, s.load()), false
	case tea.KeyMsg:
		if s.signingOut {
			return s, nil, false
		}
		if s.confirming {
			return s, s.updateConfirm(msg), false
		}
		return s, s.updateList(msg), false
	}
	return s, nil, false
}

func (s *tasksScreen) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	keys := s.env.keys
	switch {
	case keys.IsAction(msg, "confirm", scopeConfirm):
		s.confirming = false
		task, ok := s.selected()
		if !ok {
			return nil
		}
		e := s.env
		return func() tea.Msg {
			if err := e.Tasks.Delete(e.ctx, task.ID); err != nil {
				return tasksChangedMsg{err: fmt.Errorf("delete %q: %w", task.Title, err)}
			}
			return tasksChangedMsg{note: fmt.Sprintf("Deleted %q", task.Title)}
		}
	case keys.IsAction(msg, "cancel", scopeConfirm):
		s.confirming = false
	}
	return nil
}

func (s *tasksScreen) updateList(msg tea.KeyMsg) tea.Cmd {
	keys := s.env.keys
	switch {
	case keys.IsAction(msg, "down", scopeTasks):
		if s.cursor < len(s.tasks)-1 {
			s.cursor++
		}
	case keys.IsAction(msg, "up", scopeTasks):
		if s.cursor > 0 {
			s.cursor--
		}
	case keys.IsAction(msg, "refresh", scopeTasks):
		return s.load()
	case keys.IsAction(msg, "new", scopeTasks):
		return pushCmd(newTaskForm(s.env, api.Task{}))
	case keys.IsAction(msg, "edit", scopeTasks):
		if task, ok := s.selected(); ok {
			return pushCmd(newTaskForm(s.env, task))
		}
	case keys.IsAction(msg, "cycle-status", scopeTasks):
		task, ok := s.selected()
		if !ok {
			return nil
		}
		e := s.env
		return func() tea.Msg {
			updated, err := e.Tasks.Cycle(e.ctx, task)
			if err != nil {
				return tasksChangedMsg{err: err}
			}
			return tasksChangedMsg{note: fmt.Sprintf("%q is now %s", updated.Title, updated.Status)}
		}
	case keys.IsAction(msg, "delete", scopeTasks):
		if _, ok := s.selected(); ok {
			s.confirming = true
		}
	case keys.IsAction(msg, "logout", scopeTasks):
		s.signingOut = true
		return logoutCmd(s.env)
	}
	return nil
}

// taskErrorCmd reports err, pointing at sign-out when the backend no longer
// accepts the token.
func taskErrorCmd(err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) {
		return ErrorCmd(errors.New("the server rejected your session, press L to sign out"))
	}
	return ErrorCmd(err)
}

func (s *tasksScreen) View(width, height int) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(s.tasks))), ""}
	switch {
	case s.loading && len(s.tasks) == 0:
		lines = append(lines, mutedStyle.Render("Loading…"))
	case s.err != nil && len(s.tasks) == 0:
		lines = append(lines, errorStyle.Render("Could not load tasks."))
	case len(s.tasks) == 0:
		lines = append(lines, mutedStyle.Render("No tasks yet. Press n to add one."))
	}

	const statusW = 12
	titleW := max(1, width-statusW-4)
	for i, t := range s.tasks {
		marker := "  "
		if i == s.cursor {
			marker = cursorStyle.Render("▸ ")
		}
		title := truncate(t.Title, titleW)
		pad := strings.Repeat(" ", max(0, titleW-ansi.StringWidth(title)))
		row := marker + title + pad + " " + statusStyle(string(t.Status)).Render(string(t.Status))
		if i == s.cursor {
			row = selectedStyle.Render(row)
		}
		lines = append(lines, row)
	}

	if s.signingOut {
		lines = append(lines, "", mutedStyle.Render("Signing out…"))
	} else if task, ok := s.selected(); ok {
		lines = append(lines, "")
		if s.confirming {
			lines = append(lines, errorStyle.Render(truncate(fmt.Sprintf("Delete %q? y/n", task.Title), width)))
		} else if task.Description != "" {
			lines = append(lines, mutedStyle.Render(truncate(task.Description, width)))
		}
	}
	return strings.Join(lines, "\n")
}
