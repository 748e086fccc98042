package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("creates log file at the given path", func(t *testing.T) {
		dir := t.TempDir()
		logPath := filepath.Join(dir, "logs", "impl_1.log")

		logger, err := NewLogger(logPath, LevelDebug)
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer logger.Close()

		if _, err := os.Stat(logPath); os.IsNotExist(err) {
			t.Errorf("log file was not created at %s", logPath)
		}
	})

	t.Run("writes to stderr when path is empty", func(t *testing.T) {
		logger, err := NewLogger("", LevelInfo)
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer logger.Close()

		if logger.out != nil {
			t.Error("expected sink to be nil when path is empty")
		}
	})

	t.Run("defaults to INFO level for invalid level string", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "x.log")

		logger, err := NewLogger(logPath, "invalid")
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		defer logger.Close()

		if logger.logger == nil {
			t.Error("expected logger to be created")
		}
	})
}

func TestLogLevels(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(logPath, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
	logger.Warn("warn message", "key", "value")
	logger.Error("error message", "key", "value")

	logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}

	expectedLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	expectedMsgs := []string{"debug message", "info message", "warn message", "error message"}

	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
			continue
		}
		if entry["level"] != expectedLevels[i] {
			t.Errorf("line %d level = %v, want %v", i, entry["level"], expectedLevels[i])
		}
		if entry["msg"] != expectedMsgs[i] {
			t.Errorf("line %d msg = %v, want %v", i, entry["msg"], expectedMsgs[i])
		}
		if entry["key"] != "value" {
			t.Errorf("line %d key = %v, want %v", i, entry["key"], "value")
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(logPath, LevelWarn)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines at WARN level, got %d", len(lines))
	}
}

func TestChildLoggers(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(logPath, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	child := logger.WithSession("impl_42").WithSpec("auth-flow").WithStep("select-task")
	child.Info("picked a task", "task_id", "1.1")

	// The parent must not inherit the child's attributes.
	logger.Info("plain entry")

	logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}

	var childEntry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &childEntry); err != nil {
		t.Fatalf("child entry is not valid JSON: %v", err)
	}
	if childEntry["session_id"] != "impl_42" {
		t.Errorf("session_id = %v, want impl_42", childEntry["session_id"])
	}
	if childEntry["spec"] != "auth-flow" {
		t.Errorf("spec = %v, want auth-flow", childEntry["spec"])
	}
	if childEntry["step"] != "select-task" {
		t.Errorf("step = %v, want select-task", childEntry["step"])
	}
	if childEntry["task_id"] != "1.1" {
		t.Errorf("task_id = %v, want 1.1", childEntry["task_id"])
	}

	var parentEntry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &parentEntry); err != nil {
		t.Fatalf("parent entry is not valid JSON: %v", err)
	}
	if _, ok := parentEntry["session_id"]; ok {
		t.Error("parent logger should not carry child attributes")
	}
}

func TestWith(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(logPath, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	child := logger.With("agent", "frontend-specialist", "confidence", "high")
	child.Info("routed")
	logger.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("entry is not valid JSON: %v", err)
	}
	if entry["agent"] != "frontend-specialist" {
		t.Errorf("agent = %v, want frontend-specialist", entry["agent"])
	}
	if entry["confidence"] != "high" {
		t.Errorf("confidence = %v, want high", entry["confidence"])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	// Must not panic and must be closable.
	logger.Info("discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
