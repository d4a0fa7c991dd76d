package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "display.log")
	l, err := New(LevelDebug, path, "WebDisplay")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Info("session connected: id=%s", "7")
	l.Debug("detail")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "[INFO] [WebDisplay] session connected: id=7") {
		t.Errorf("missing info line in %q", out)
	}
	if !strings.Contains(out, "[DEBUG]") {
		t.Errorf("missing debug line in %q", out)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.log")
	l, err := New(LevelWarn, path, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	data, _ := os.ReadFile(path)
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Errorf("low-level lines leaked: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestWithPrefixNests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.log")
	l, err := New(LevelInfo, path, "Web")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.WithPrefix("Hub").Info("started")

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "[Web:Hub] started") {
		t.Errorf("nested prefix missing: %q", string(data))
	}
}

func TestGlobalIsUsableWithoutInit(t *testing.T) {
	// Must not panic even if Init was never called.
	Global().Info("hello")
	Info("hello")
}
