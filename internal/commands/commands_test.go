package commands_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
	"todo/internal/testutil"
)

var errBackend = errors.New("connection refused")

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func checkResult(t *testing.T, gotOut, gotErr string, gotCode int, wantOut, wantErr string, wantCode int) {
	t.Helper()
	if gotCode != wantCode {
		t.Errorf("expected exit code %d, got %d", wantCode, gotCode)
	}
	if gotOut != wantOut {
		t.Errorf("expected stdout %q, got %q", wantOut, gotOut)
	}
	if gotErr != wantErr {
		t.Errorf("expected stderr %q, got %q", wantErr, gotErr)
	}
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask("t-milk", "Buy milk", false)
	svc.AddTask("t-eggs", "Buy eggs", true)
	return svc
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)
	checkResult(t, stdout, stderr, code, "todo 0.1.0\n", "", exitcode.Success)
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

// Tests for list command
func TestListCommand_WithTasks(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, seeded(), nil, false)
	checkResult(t, stdout, stderr, code, "   1  [ ] Buy milk\n   2  [x] Buy eggs\n", "", exitcode.Success)
}

func TestListCommand_ShowIDs(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetShowIDs(true)
	stdout, stderr, code := runCommand(t, cmd, seeded(), nil, false)
	checkResult(t, stdout, stderr, code, "   1  [ ] Buy milk  (t-milk)\n   2  [x] Buy eggs  (t-eggs)\n", "", exitcode.Success)
}

func TestListCommand_Empty(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, false)
	checkResult(t, stdout, stderr, code, "no tasks found\n", "", exitcode.Success)
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, true)
	checkResult(t, stdout, stderr, code, "", "", exitcode.Success)
}

func TestListCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = errBackend

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	checkResult(t, stdout, stderr, code, "", "error: backend error: loading tasks: connection refused\n", exitcode.BackendError)
}

func TestListCommand_UnexpectedArg(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, seeded(), []string{"extra"}, false)
	checkResult(t, stdout, stderr, code, "", "error: unexpected argument: extra\n", exitcode.UserError)
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Buy", "milk"}, false)
	checkResult(t, stdout, stderr, code, "ok\n", "", exitcode.Success)

	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Errorf("expected one task 'Buy milk', got %+v", tasks)
	}
	if svc.ListCalls() != 1 {
		t.Errorf("expected one reload after create, got %d", svc.ListCalls())
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, testutil.NewFakeService(), []string{"x"}, true)
	checkResult(t, stdout, stderr, code, "", "", exitcode.Success)
}

func TestAddCommand_NoText(t *testing.T) {
	svc := testutil.NewFakeService()

	for _, args := range [][]string{nil, {" "}} {
		stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, args, false)
		checkResult(t, stdout, stderr, code, "", "error: task text required\n", exitcode.UserError)
	}
	if svc.CreateCalls() != 0 {
		t.Error("no task should be created")
	}
}

func TestAddCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errBackend

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"x"}, false)
	checkResult(t, stdout, stderr, code, "", "error: backend error: creating task: connection refused\n", exitcode.BackendError)
}

// Tests for toggle command
func TestToggleCommand_ByNumber(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, []string{"2"}, false)
	checkResult(t, stdout, stderr, code, "ok\n", "", exitcode.Success)

	if tasks := svc.Tasks(); tasks[1].Completed {
		t.Errorf("task 2 should be reopened, got %+v", tasks[1])
	}
}

func TestToggleCommand_ByID(t *testing.T) {
	svc := seeded()

	_, _, code := runCommand(t, &commands.ToggleCmd{}, svc, []string{"t-milk"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if tasks := svc.Tasks(); !tasks[0].Completed {
		t.Errorf("task t-milk should be completed, got %+v", tasks[0])
	}
}

func TestToggleCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCode int
	}{
		{"no ref", nil, "error: task reference required\n", exitcode.UserError},
		{"zero", []string{"0"}, "error: task number out of range: 0\n", exitcode.UserError},
		{"out of range", []string{"3"}, "error: task number out of range: 3\n", exitcode.UserError},
		{"unknown id", []string{"nope"}, "error: task not found: nope\n", exitcode.UserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := seeded()
			stdout, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, tt.args, false)
			checkResult(t, stdout, stderr, code, "", tt.wantErr, tt.wantCode)
			if svc.UpdateCalls() != 0 {
				t.Error("no update should be sent")
			}
		})
	}
}

func TestToggleCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.UpdateTaskErr = errBackend

	stdout, stderr, code := runCommand(t, &commands.ToggleCmd{}, svc, []string{"1"}, false)
	checkResult(t, stdout, stderr, code, "", "error: backend error: updating task t-milk: connection refused\n", exitcode.BackendError)
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	svc := seeded()

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, false)
	checkResult(t, stdout, stderr, code, "ok\n", "", exitcode.Success)

	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t-eggs" {
		t.Errorf("expected only t-eggs left, got %+v", tasks)
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, seeded(), nil, false)
	checkResult(t, stdout, stderr, code, "", "error: task reference required\n", exitcode.UserError)
}

func TestRmCommand_GoneOnServer(t *testing.T) {
	svc := seeded()
	svc.DeleteTaskErr = service.ErrNotFound

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"t-eggs"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: deleting task t-eggs: not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for serve command
func TestServeCommand_UnknownDriver(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: t.TempDir(), Listen: "127.0.0.1:0", Store: store.Config{Driver: "postgres"}}

	code := (&commands.ServeCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)
	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.Contains(errBuf.String(), `error: unknown store driver: "postgres"`) {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestServeCommand_StoreUnreachable(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	dsn := t.TempDir() + "/missing/dir/tasks.db"
	cfg := &config.Config{Dir: t.TempDir(), Listen: "127.0.0.1:0", Store: store.Config{Driver: store.DriverSQLite, DSN: dsn}}

	code := (&commands.ServeCmd{}).Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(errBuf.String(), "error: store connection failed") {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: t.TempDir(), Listen: "127.0.0.1:0", Store: store.Config{Driver: store.DriverMemory}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := (&commands.ServeCmd{}).Run(ctx, cfg, nil, nil, &outBuf, &errBuf)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errBuf.String())
	}
}

// Tests for tui command
func TestTuiCommand_NeedsTerminal(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.TuiCmd{}, seeded(), nil, false)
	checkResult(t, stdout, stderr, code, "", "error: tui needs a terminal\n", exitcode.UserError)
}

// Tests for registry
func TestRegistry_Aliases(t *testing.T) {
	for alias, name := range map[string]string{
		"ls": "list", "create": "add", "done": "toggle", "delete": "rm",
	} {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok {
			t.Errorf("alias %q not registered", alias)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("alias %q resolves to %q, want %q", alias, cmd.Name(), name)
		}
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(&commands.ListCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	all := r.All()
	if len(all) != 1 || all[0].Name() != "list" {
		t.Errorf("All() = %v", all)
	}
}
