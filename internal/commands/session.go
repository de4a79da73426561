package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/controller"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/view"
)

// session is a controller driving an in-memory view for the length of
// one command.
type session struct {
	view *view.Memory
	ctrl *controller.Tasks
}

func newSession(cfg *config.Config, svc service.Service, errOut io.Writer) *session {
	v := view.NewMemory(view.State{})
	return &session{
		view: v,
		ctrl: controller.New(v, svc, commandLogger(cfg, errOut)),
	}
}

// resolve loads the task list and returns the ID ref points at.
func (s *session) resolve(ctx context.Context, ref TaskRef) (string, error) {
	if err := s.ctrl.LoadTasks(ctx); err != nil {
		return "", err
	}
	return ref.Resolve(s.view.State().Tasks)
}

// fail reports err on errOut and maps it to an exit code.
func fail(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, controller.ErrTaskNotFound),
		errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
