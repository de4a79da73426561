// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single task item.
// JSON names follow the resource surface: the ID travels as "_id" and
// the text as "task".
type Task struct {
	ID        string `json:"_id"`
	Text      string `json:"task"`
	Completed bool   `json:"completed"`
}

// TaskPatch holds the partial fields of an update. Nil fields are left
// unchanged and are omitted on the wire.
type TaskPatch struct {
	Text      *string `json:"task,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Apply returns t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// CompletedPatch returns a patch that sets only the completed flag.
func CompletedPatch(completed bool) TaskPatch {
	return TaskPatch{Completed: &completed}
}
