package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/taskpad/internal/api"
	"github.com/jask/taskpad/internal/navigation"
)

const statusField = 2

// taskForm creates a task when editing is empty and edits it otherwise.
type taskForm struct {
	env     *env
	editing api.ID
	inputs  []textinput.Model
	status  api.Status
	focus   int
	busy    bool
	err     string
}

func newTaskForm(e *env, task api.Task) *taskForm {
	title := textinput.New()
	title.Prompt = "Title: "
	title.CharLimit = 200
	title.SetValue(task.Title)
	title.Focus()
	desc := textinput.New()
	desc.Prompt = "Description: "
	desc.CharLimit = 1000
	desc.SetValue(task.Description)

	status := task.Status
	if !status.Valid() {
		status = api.StatusToDo
	}
	return &taskForm{env: e, editing: task.ID, inputs: []textinput.Model{title, desc}, status: status}
}

func (f *taskForm) Name() navigation.Screen { return navigation.ScreenTaskForm }
func (f *taskForm) Scope() string           { return scopeTaskForm }

func (f *taskForm) Title() string {
	if f.editing == "" {
		return "New task"
	}
	return "Edit task"
}

func (f *taskForm) setFocus(i int) {
	if f.focus < len(f.inputs) {
		f.inputs[f.focus].Blur()
	}
	f.focus = (i + statusField + 1) % (statusField + 1)
	if f.focus < len(f.inputs) {
		f.inputs[f.focus].Focus()
	}
}

func (f *taskForm) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	keys := f.env.keys
	switch msg := msg.(type) {
	case taskSavedMsg:
		f.busy = false
		if msg.err != nil {
			f.err = msg.err.Error()
			return f, nil, false
		}
		note := "Saved " + msg.task.Title
		return f, func() tea.Msg { return tasksChangedMsg{note: note} }, true
	case tea.KeyMsg:
		if f.busy {
			return f, nil, false
		}
		switch {
		case keys.IsAction(msg, "back", f.Scope()):
			return f, nil, true
		case keys.IsAction(msg, "next-field", f.Scope()):
			f.setFocus(f.focus + 1)
			return f, nil, false
		case keys.IsAction(msg, "prev-field", f.Scope()):
			f.setFocus(f.focus - 1)
			return f, nil, false
		case keys.IsAction(msg, "submit", f.Scope()):
			return f, f.submit(), false
		case f.focus == statusField && keys.IsAction(msg, "cycle-status", f.Scope()):
			f.status = f.status.Next()
			return f, nil, false
		}
	}
	if f.focus >= len(f.inputs) {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f *taskForm) submit() tea.Cmd {
	in := api.TaskInput{
		Title:       f.inputs[0].Value(),
		Description: f.inputs[1].Value(),
		Status:      f.status,
	}
	if strings.TrimSpace(in.Title) == "" {
		f.err = "Title is required."
		f.setFocus(0)
		return nil
	}
	f.busy = true
	f.err = ""
	e, id := f.env, f.editing
	return func() tea.Msg {
		task, err := e.Tasks.Save(e.ctx, id, in)
		return taskSavedMsg{task: task, err: err}
	}
}

func (f *taskForm) View(width, height int) string {
	lines := []string{titleStyle.Render(f.Title()), ""}
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	status := "Status: ‹ " + statusStyle(string(f.status)).Render(string(f.status)) + " ›"
	if f.focus == statusField {
		status = cursorStyle.Render("> ") + status
	} else {
		status = "  " + status
	}
	lines = append(lines, status, "")
	switch {
	case f.busy:
		lines = append(lines, mutedStyle.Render("Saving…"))
	case f.err != "":
		lines = append(lines, errorStyle.Render(f.err))
	default:
		lines = append(lines, mutedStyle.Render("enter: save   esc: cancel   tab: next field"))
	}
	for i := range lines {
		lines[i] = truncate(lines[i], width-4)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
