// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Service when no task has the requested ID.
var ErrNotFound = errors.New("not found")

// Service defines the interface for task backend operations.
// The HTTP client, the controller's callers and every persistent store
// speak this interface; none of them import a concrete backend.
type Service interface {
	// ListTasks returns all tasks in store order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task with the given text.
	// The returned task carries the ID assigned by the store.
	CreateTask(ctx context.Context, text string) (Task, error)

	// UpdateTask applies patch to the task with the given ID and
	// returns the updated task. Returns ErrNotFound if no task matches.
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)

	// DeleteTask deletes the task with the given ID.
	// Returns ErrNotFound if no task matches.
	DeleteTask(ctx context.Context, id string) error
}
