package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"todo/internal/service"
	"todo/internal/store/memstore"
)

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	a, err := s.CreateTask(ctx, "a")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := uuid.Parse(a.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", a.ID, err)
	}
	b, _ := s.CreateTask(ctx, "b")

	updated, err := s.UpdateTask(ctx, a.ID, service.CompletedPatch(true))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.Completed || updated.Text != "a" {
		t.Errorf("updated = %+v", updated)
	}

	if err := s.DeleteTask(ctx, b.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	tasks, _ := s.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].ID != a.ID || !tasks[0].Completed {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	if _, err := s.UpdateTask(ctx, "nope", service.CompletedPatch(true)); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTask(ctx, "nope"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}
