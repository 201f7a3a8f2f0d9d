package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spec-kit/staff-roster/internal/config"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staff.log")
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", Output: path, Name: "staffctl"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"message":"hello"`) || !strings.Contains(line, `"logger":"staffctl"`) {
		t.Fatalf("unexpected log line %q", line)
	}
}

func TestNewLoggerBadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staff.log")
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty", Format: "console", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Fatalf("unexpected log output %q", data)
	}
}
