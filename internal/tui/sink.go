package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/view"
)

// stateChangedMsg tells the model to re-read the sink. It carries no
// state so that out-of-order delivery cannot show a stale list.
type stateChangedMsg struct{}

// Sink is the view the controller drives while the UI runs. It holds
// state in memory and wakes the attached program on every change.
type Sink struct {
	*view.Memory
	program atomic.Pointer[tea.Program]
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	s := &Sink{Memory: view.NewMemory(view.State{})}
	s.Subscribe(s.notify)
	return s
}

// Attach makes p receive change notifications.
func (s *Sink) Attach(p *tea.Program) {
	s.program.Store(p)
}

func (s *Sink) notify(view.State) {
	p := s.program.Load()
	if p == nil {
		return
	}
	// SetState may be called from inside Update; Send would block there.
	go p.Send(stateChangedMsg{})
}
