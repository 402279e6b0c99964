package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Status is a task's workflow state as the backend spells it.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every status in cycle order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusCompleted}

// Next returns the status after s, wrapping Completed back to To Do.
// Unknown statuses restart the cycle.
func (s Status) Next() Status {
	for i, candidate := range Statuses {
		if candidate == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusToDo
}

func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Task is a task as returned by the backend.
type Task struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
}

// TaskInput is the body of create and update calls.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Input returns the editable fields of t.
func (t Task) Input() TaskInput {
	return TaskInput{Title: t.Title, Description: t.Description, Status: t.Status}
}

// ID is a task identifier. The backend may send it as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}
