package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/taskpad/internal/navigation"
)

// Screen is one mounted view. Update returns pop=true to close itself.
type Screen interface {
	Update(msg tea.Msg) (next Screen, cmd tea.Cmd, pop bool)
	View(width, height int) string
	Name() navigation.Screen
	Scope() string
	Title() string
}

// initer is implemented by screens that start work when mounted.
type initer interface {
	Init() tea.Cmd
}

func initScreen(s Screen) tea.Cmd {
	if in, ok := s.(initer); ok {
		return in.Init()
	}
	return nil
}

type ScreenStack struct {
	items []Screen
}

func (s *ScreenStack) Push(screen Screen) {
	if screen == nil {
		return
	}
	s.items = append(s.items, screen)
}

func (s *ScreenStack) Pop() Screen {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last
}

func (s *ScreenStack) ReplaceTop(screen Screen) {
	if len(s.items) == 0 || screen == nil {
		return
	}
	s.items[len(s.items)-1] = screen
}

// Reset discards every mounted screen.
func (s *ScreenStack) Reset() {
	s.items = nil
}

func (s ScreenStack) Top() Screen {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s ScreenStack) Len() int {
	return len(s.items)
}
