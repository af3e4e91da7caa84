package logger

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	var out bytes.Buffer
	l := New(Options{Dir: t.TempDir(), Output: &out})
	if l == nil {
		t.Fatal("Expected logger to be created, got nil")
	}

	// Test that logger methods don't panic
	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")

	l.Close()

	if got := strings.Count(out.String(), "\n"); got != 5 {
		t.Errorf("expected 5 console lines, got %d", got)
	}
}

func TestConsoleFormat(t *testing.T) {
	var out bytes.Buffer
	l := New(Options{Output: &out})

	l.Success("queue online", "Queue")

	line := out.String()
	if !strings.Contains(line, "[\033[32mSUCCESS\033[0m] [Queue]: queue online") {
		t.Errorf("unexpected console line: %q", line)
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestLogFiles(t *testing.T) {
	dir := t.TempDir()
	l := New(Options{Dir: dir, Output: io.Discard})

	l.Info("first", "TEST")
	l.Error("second", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(dir, "combined.log"))
	if err != nil {
		t.Fatalf("reading combined.log: %v", err)
	}
	errorLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	if err != nil {
		t.Fatalf("reading error.log: %v", err)
	}

	if !strings.Contains(string(combined), "[INFO] [TEST]: first") || !strings.Contains(string(combined), "[ERROR] [TEST]: second") {
		t.Errorf("combined.log missing lines: %q", combined)
	}
	if strings.Contains(string(errorLog), "first") {
		t.Error("error.log should only contain error-level lines")
	}
	if !strings.Contains(string(errorLog), "[ERROR] [TEST]: second") {
		t.Errorf("error.log missing error line: %q", errorLog)
	}
	if strings.Contains(string(combined), "\033[") {
		t.Error("file output should not contain color codes")
	}
}

func TestErrorWebhook(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	l := New(Options{Output: io.Discard, ErrorWebhookURL: srv.URL})
	l.Info("not sent", "TEST")
	l.Error("store fault", "Queue")

	select {
	case body := <-bodies:
		if !strings.Contains(body, "store fault") || !strings.Contains(body, "[ERROR] Queue") {
			t.Errorf("unexpected webhook body: %s", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	// Reset the global logger for this test
	logger = nil
	once = sync.Once{}

	l := Init("", "")
	if l == nil {
		t.Fatal("Expected Init to return a logger")
	}

	// Calling Init again should return the same logger
	l2 := Init("different", "different")
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	if l != Get() {
		t.Error("Expected Get to return the same logger")
	}

	l.Close()
	os.RemoveAll(filepath.Join(".", "logs"))
}
