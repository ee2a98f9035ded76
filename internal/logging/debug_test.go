package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewDebugLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), DebugLogName)

	logger, stop, err := NewDebugLogger(path)
	if err != nil {
		t.Fatalf("NewDebugLogger() error = %v", err)
	}
	logger.Debug("gating pass", zap.Int("pass", 2))
	stop()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("debug log not written: %v", err)
	}

	line := strings.TrimSpace(string(content))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("entry is not JSON: %q", line)
	}
	if entry["msg"] != "gating pass" || entry["level"] != "debug" || entry["pass"] != float64(2) {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewDebugLoggerBadPath(t *testing.T) {
	_, _, err := NewDebugLogger(filepath.Join(t.TempDir(), "missing", "debug.log"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
