// Package memstore is an in-process task store.
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"todo/internal/service"
)

// Store keeps tasks in memory in creation order. It is safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	tasks []service.Task
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// ListTasks implements service.Service.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

// CreateTask implements service.Service.
func (s *Store) CreateTask(ctx context.Context, text string) (service.Task, error) {
	task := service.Task{ID: uuid.NewString(), Text: text}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (s *Store) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return service.Task{}, service.ErrNotFound
	}
	s.tasks[i] = patch.Apply(s.tasks[i])
	return s.tasks[i], nil
}

// DeleteTask implements service.Service.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return service.ErrNotFound
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close drops all tasks.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
}
