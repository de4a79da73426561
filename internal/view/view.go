// Package view defines the state sink the task controller drives.
package view

import (
	"slices"
	"sync"

	"todo/internal/service"
)

// State is the UI state the controller reads and replaces.
type State struct {
	// Tasks is the task list as last fetched or locally mutated.
	Tasks []service.Task

	// CurrentTask is the draft text of a task pending creation.
	CurrentTask string
}

// Clone returns a copy of s that shares no slice storage with it.
func (s State) Clone() State {
	s.Tasks = slices.Clone(s.Tasks)
	return s
}

// Patch is a shallow state update. Only the fields set through
// WithTasks or WithCurrentTask are replaced.
type Patch struct {
	tasks       []service.Task
	setTasks    bool
	currentTask string
	setCurrent  bool
}

// WithTasks returns a patch replacing the whole task list.
func WithTasks(tasks []service.Task) Patch {
	return Patch{tasks: tasks, setTasks: true}
}

// WithCurrentTask returns a patch replacing the draft field.
func WithCurrentTask(text string) Patch {
	return Patch{currentTask: text, setCurrent: true}
}

// Apply returns s with the patch merged in.
func (p Patch) Apply(s State) State {
	if p.setTasks {
		s.Tasks = slices.Clone(p.tasks)
	}
	if p.setCurrent {
		s.CurrentTask = p.currentTask
	}
	return s
}

// View is anything exposing a current state and a way to merge a patch
// into it. Implementations re-render on SetState.
type View interface {
	// State returns a copy of the current state. Callers may modify
	// the returned task slice.
	State() State
	SetState(p Patch)
}

// Memory is a View holding state in memory. It is safe for concurrent use.
// Subscribers are called after every SetState with the new state.
type Memory struct {
	mu    sync.RWMutex
	state State
	subs  []func(State)
}

// NewMemory creates a Memory view with the given initial state.
func NewMemory(initial State) *Memory {
	return &Memory{state: initial.Clone()}
}

// State returns a copy of the current state.
func (m *Memory) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// SetState merges p into the current state and notifies subscribers.
func (m *Memory) SetState(p Patch) {
	m.mu.Lock()
	m.state = p.Apply(m.state)
	next := m.state.Clone()
	subs := slices.Clone(m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers fn to be called after every state change.
func (m *Memory) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
