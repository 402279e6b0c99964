package tui

import (
	"slices"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if b.Description != "" && scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

func (r *KeyRegistry) IsAction(msg tea.KeyMsg, action, scope string) bool {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if b.Action != action || !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return true
			}
		}
	}
	return false
}

// normalizeKey keeps single characters case-sensitive so "L" and "l" differ.
func normalizeKey(k string) string {
	k = strings.TrimSpace(k)
	if utf8.RuneCountInString(k) == 1 {
		return k
	}
	return strings.ToLower(k)
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

const (
	scopeLogin    = "screen:login"
	scopeRegister = "screen:register"
	scopeTasks    = "screen:tasks"
	scopeConfirm  = "screen:tasks:confirm"
	scopeTaskForm = "screen:task-form"
)

var formScopes = []string{scopeLogin, scopeRegister, scopeTaskForm}

func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"tab"}, Action: "next-field", Description: "next field", Scopes: formScopes},
		{Keys: []string{"shift+tab"}, Action: "prev-field", Scopes: formScopes},
		{Keys: []string{"enter"}, Action: "submit", Description: "submit", Scopes: formScopes},
		{Keys: []string{"ctrl+r"}, Action: "register", Description: "create account", Scopes: []string{scopeLogin}},
		{Keys: []string{"esc"}, Action: "back", Description: "back", Scopes: []string{scopeRegister, scopeTaskForm}},
		{Keys: []string{"left", "right"}, Action: "cycle-status", Description: "status", Scopes: []string{scopeTaskForm}},
		{Keys: []string{"j", "down"}, Action: "down", Description: "down", Scopes: []string{scopeTasks}},
		{Keys: []string{"k", "up"}, Action: "up", Description: "up", Scopes: []string{scopeTasks}},
		{Keys: []string{"n"}, Action: "new", Description: "new", Scopes: []string{scopeTasks}},
		{Keys: []string{"e", "enter"}, Action: "edit", Description: "edit", Scopes: []string{scopeTasks}},
		{Keys: []string{"s"}, Action: "cycle-status", Description: "status", Scopes: []string{scopeTasks}},
		{Keys: []string{"d"}, Action: "delete", Description: "delete", Scopes: []string{scopeTasks}},
		{Keys: []string{"r"}, Action: "refresh", Description: "refresh", Scopes: []string{scopeTasks}},
		{Keys: []string{"L"}, Action: "logout", Description: "sign out", Scopes: []string{scopeTasks}},
		{Keys: []string{"y"}, Action: "confirm", Description: "delete", Scopes: []string{scopeConfirm}},
		{Keys: []string{"n", "esc"}, Action: "cancel", Description: "keep", Scopes: []string{scopeConfirm}},
		{Keys: []string{"q"}, Action: "quit", Description: "quit", Scopes: []string{scopeTasks}},
		{Keys: []string{"ctrl+c"}, Action: "quit", Scopes: []string{"*"}},
	}
}
