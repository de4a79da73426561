package store_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"todo/internal/service"
	"todo/internal/store"
	"todo/internal/store/memstore"
)

// pingFailer is a backend whose Ping always fails.
type pingFailer struct {
	*memstore.Store
	err error
}

func (p pingFailer) Ping(ctx context.Context) error { return p.err }

func TestOpen_MemoryLifecycle(t *testing.T) {
	ctx := context.Background()

	conn, err := store.Open(ctx, store.Config{Driver: store.DriverMemory}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if conn.State() != store.StateReady {
		t.Fatalf("state = %s, want ready", conn.State())
	}

	task, err := conn.CreateTask(ctx, "a")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := conn.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}

	if err := conn.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if conn.State() != store.StateClosed {
		t.Errorf("state = %s, want closed", conn.State())
	}

	if _, err := conn.ListTasks(ctx); !errors.Is(err, store.ErrClosed) {
		t.Errorf("ListTasks after close: %v", err)
	}
	if _, err := conn.UpdateTask(ctx, task.ID, service.CompletedPatch(true)); !errors.Is(err, store.ErrClosed) {
		t.Errorf("UpdateTask after close: %v", err)
	}
	if err := conn.Close(ctx); !errors.Is(err, store.ErrClosed) {
		t.Errorf("second Close: %v", err)
	}
	if err := conn.Ready(ctx); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Ready after close: %v", err)
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := store.Config{Driver: store.DriverSQLite, DSN: filepath.Join(t.TempDir(), "todo.db")}

	conn, err := store.Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.CreateTask(ctx, "a"); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	tasks, err := conn.ListTasks(ctx)
	if err != nil || len(tasks) != 1 {
		t.Errorf("ListTasks = %+v, %v", tasks, err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), store.Config{Driver: "redis"}, nil)
	if !errors.Is(err, store.ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestConn_NotReadyUntilPinged(t *testing.T) {
	ctx := context.Background()
	pingErr := errors.New("unreachable")
	backend := pingFailer{Store: memstore.New(), err: pingErr}

	conn := store.NewConn("fake", backend, nil)
	if conn.State() != store.StateOpen {
		t.Fatalf("state = %s, want open", conn.State())
	}
	if _, err := conn.ListTasks(ctx); err == nil {
		t.Error("expected error before Ready")
	}
	if err := conn.Ready(ctx); !errors.Is(err, pingErr) {
		t.Errorf("Ready: expected ping error, got %v", err)
	}
	if conn.State() != store.StateOpen {
		t.Errorf("state = %s after failed ping, want open", conn.State())
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		driver, in, want string
	}{
		{store.DriverMongo, "mongodb://user:pass@db:27017/todo", "mongodb://***:***@db:27017/todo"},
		{store.DriverMongo, "mongodb://db:27017", "mongodb://db:27017"},
		{store.DriverMongo, "", ""},
		{store.DriverMySQL, "root:s3cret@tcp(127.0.0.1:3306)/todo", "***:***@tcp(127.0.0.1:3306)/todo"},
		{store.DriverMySQL, "tcp(127.0.0.1:3306)/todo", "tcp(127.0.0.1:3306)/todo"},
		{store.DriverSQLite, "file:tasks.db?_auth&_auth_user=admin&_auth_pass=s3cret", "file:tasks.db?_auth&_auth_user=admin&_auth_pass=***"},
		{store.DriverSQLite, "/var/lib/todo/tasks.db", "/var/lib/todo/tasks.db"},
	}
	for _, tt := range tests {
		if got := store.Redact(tt.driver, tt.in); got != tt.want {
			t.Errorf("Redact(%q, %q) = %q, want %q", tt.driver, tt.in, got, tt.want)
		}
	}
}

func TestOpen_LogsRedactedMySQLDSN(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = store.Open(ctx, store.Config{Driver: store.DriverMySQL, DSN: "root:s3cret@tcp(127.0.0.1:1)/todo"}, logger)

	if strings.Contains(buf.String(), "s3cret") {
		t.Errorf("password leaked into the log:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "tcp(127.0.0.1:1)/todo") {
		t.Errorf("log should keep the address:\n%s", buf.String())
	}
}
