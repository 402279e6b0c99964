package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jask/taskpad/internal/api"
)

// ErrTitleRequired is returned by Save when the title is blank.
var ErrTitleRequired = errors.New("task: title is required")

// TaskAPI is the subset of the backend client the task service drives.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]api.Task, error)
	CreateTask(ctx context.Context, in api.TaskInput) (api.Task, error)
	UpdateTask(ctx context.Context, id api.ID, in api.TaskInput) (api.Task, error)
	DeleteTask(ctx context.Context, id api.ID) error
}

// TaskService holds task workflow rules on top of the backend.
type TaskService struct {
	API TaskAPI
}

func (s *TaskService) List(ctx context.Context) ([]api.Task, error) {
	return s.API.ListTasks(ctx)
}

// Cycle advances task to its next status and persists it.
func (s *TaskService) Cycle(ctx context.Context, task api.Task) (api.Task, error) {
	in := task.Input()
	in.Status = task.Status.Next()
	updated, err := s.API.UpdateTask(ctx, task.ID, in)
	if err != nil {
		return api.Task{}, fmt.Errorf("cycle task %s: %w", task.ID, err)
	}
	return updated, nil
}

// Save creates the task when id is empty and updates it otherwise.
// An empty status defaults to To Do.
func (s *TaskService) Save(ctx context.Context, id api.ID, in api.TaskInput) (api.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return api.Task{}, ErrTitleRequired
	}
	if in.Status == "" {
		in.Status = api.StatusToDo
	}
	if !in.Status.Valid() {
		return api.Task{}, fmt.Errorf("task: unknown status %q", in.Status)
	}
	if id == "" {
		return s.API.CreateTask(ctx, in)
	}
	return s.API.UpdateTask(ctx, id, in)
}

func (s *TaskService) Delete(ctx context.Context, id api.ID) error {
	return s.API.DeleteTask(ctx, id)
}
