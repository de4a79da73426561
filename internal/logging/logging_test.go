package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo/internal/logging"
)

func TestNew_LevelFollowsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, false)
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info record should be dropped without debug: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn record missing: %q", buf.String())
	}

	buf.Reset()
	logging.New(&buf, true).Debug("details")
	if !strings.Contains(buf.String(), "details") {
		t.Errorf("debug record missing: %q", buf.String())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todo.log")

	logger, closer, err := logging.NewFile(path, false)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	logger.Info("started", "component", "tui")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "component=tui") {
		t.Errorf("unexpected log contents: %q", data)
	}
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLevel(&buf, slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("handled", "status", 200)

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug record should be dropped: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("info record missing: %q", buf.String())
	}
}
