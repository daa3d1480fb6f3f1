package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := SetOutput(path); err != nil {
		t.Fatalf("SetOutput() failed: %v", err)
	}
	defer Close()

	SetLevel("WARN")
	defer SetLevel("INFO")

	Debug("debug line")
	Info("info line")
	Warn("warn line")
	Error("error line")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)

	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("lines below WARN should be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Errorf("WARN and ERROR lines should be written, got:\n%s", out)
	}
}

func TestSetLevelIgnoresUnknown(t *testing.T) {
	SetLevel("INFO")
	SetLevel("VERBOSE")
	if currentLevel != LevelInfo {
		t.Errorf("unknown level should leave current level unchanged, got %v", currentLevel)
	}
}

func TestSetOutputFileAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.log")

	if err := SetOutput(path); err != nil {
		t.Fatalf("SetOutput() failed: %v", err)
	}
	Info("first")
	Close()

	if err := SetOutput(path); err != nil {
		t.Fatalf("SetOutput() failed on reopen: %v", err)
	}
	Info("second")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("reopening should append, got:\n%s", data)
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
