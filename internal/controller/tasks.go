// Package controller keeps a view's task state in step with a task
// service. Mutations are applied to the view before the service
// confirms them and are reverted if the service call fails.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"todo/internal/service"
	"todo/internal/view"
)

// ErrTaskNotFound is returned by HandleUpdate and HandleDelete when the
// view holds no task with the requested ID. No request is sent.
var ErrTaskNotFound = errors.New("task not found")

// Tasks mediates between a view and a task service.
//
// Every method logs its own failures and also returns them; the view
// is only ever given task lists and draft text, never errors.
type Tasks struct {
	view   view.View
	svc    service.Service
	logger *slog.Logger

	// mu guards read-modify-write cycles on the view state.
	mu    sync.Mutex
	queue *keyedQueue
}

// New creates a controller driving v through svc.
// A nil logger discards log output.
func New(v view.View, svc service.Service, logger *slog.Logger) *Tasks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tasks{
		view:   v,
		svc:    svc,
		logger: logger,
		queue:  newKeyedQueue(),
	}
}

// LoadTasks replaces the view's task list with the service's list.
// On failure the view is left unchanged.
func (c *Tasks) LoadTasks(ctx context.Context) error {
	tasks, err := c.svc.ListTasks(ctx)
	if err != nil {
		c.logger.Error("loading tasks failed", "error", err)
		return fmt.Errorf("loading tasks: %w", err)
	}

	c.mu.Lock()
	c.view.SetState(view.WithTasks(tasks))
	c.mu.Unlock()

	c.logger.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// HandleChange sets the draft text.
func (c *Tasks) HandleChange(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SetState(view.WithCurrentTask(text))
}

// HandleSubmit creates a task from the draft text. On success the draft
// is cleared and the list is reloaded from the service, so the new
// task's ID always comes from the store. On failure nothing changes.
//
// Callers wired to an input event must stop that event from reaching
// the input themselves.
func (c *Tasks) HandleSubmit(ctx context.Context) error {
	draft := c.view.State().CurrentTask

	created, err := c.svc.CreateTask(ctx, draft)
	if err != nil {
		c.logger.Error("creating task failed", "error", err)
		return fmt.Errorf("creating task: %w", err)
	}
	c.logger.Debug("task created", "id", created.ID)

	c.mu.Lock()
	c.view.SetState(view.WithCurrentTask(""))
	c.mu.Unlock()

	return c.LoadTasks(ctx)
}

// HandleUpdate toggles the completed flag of the task with the given ID.
// The toggled task is shown before the service is asked to persist it;
// if persisting fails the task is restored.
func (c *Tasks) HandleUpdate(ctx context.Context, id string) error {
	release, err := c.queue.acquire(ctx, id)
	if err != nil {
		c.logger.Debug("gave up waiting for task", "id", id, "error", err)
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	defer release()

	c.mu.Lock()
	tasks := c.view.State().Tasks
	index := indexOf(tasks, id)
	if index < 0 {
		c.mu.Unlock()
		c.logger.Warn("update skipped", "id", id, "error", ErrTaskNotFound)
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	original := tasks[index]
	next := slices.Clone(tasks)
	next[index].Completed = !original.Completed
	c.view.SetState(view.WithTasks(next))
	c.mu.Unlock()

	if _, err := c.svc.UpdateTask(ctx, id, service.CompletedPatch(next[index].Completed)); err != nil {
		c.restore(original, index)
		c.logger.Error("updating task failed, rolled back", "id", id, "error", err)
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	return nil
}

// HandleDelete removes the task with the given ID. The task disappears
// from the view before the service is asked to delete it; if deleting
// fails the task is put back where it was.
func (c *Tasks) HandleDelete(ctx context.Context, id string) error {
	release, err := c.queue.acquire(ctx, id)
	if err != nil {
		c.logger.Debug("gave up waiting for task", "id", id, "error", err)
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	defer release()

	c.mu.Lock()
	tasks := c.view.State().Tasks
	index := indexOf(tasks, id)
	if index < 0 {
		c.mu.Unlock()
		c.logger.Warn("delete skipped", "id", id, "error", ErrTaskNotFound)
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	original := tasks[index]
	next := slices.Delete(slices.Clone(tasks), index, index+1)
	c.view.SetState(view.WithTasks(next))
	c.mu.Unlock()

	if err := c.svc.DeleteTask(ctx, id); err != nil {
		c.restore(original, index)
		c.logger.Error("deleting task failed, rolled back", "id", id, "error", err)
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// restore puts task back into the view. An entry with the same ID is
// overwritten in place; a missing one is reinserted at index, clamped
// to the current length. Other tasks are not touched, so a concurrent
// operation on a different ID keeps its result.
func (c *Tasks) restore(task service.Task, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := slices.Clone(c.view.State().Tasks)
	if i := indexOf(tasks, task.ID); i >= 0 {
		tasks[i] = task
	} else {
		tasks = slices.Insert(tasks, min(index, len(tasks)), task)
	}
	c.view.SetState(view.WithTasks(tasks))
}

func indexOf(tasks []service.Task, id string) int {
	return slices.IndexFunc(tasks, func(t service.Task) bool { return t.ID == id })
}
