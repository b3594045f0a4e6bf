package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBuildJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	l, err := build(true, false, path)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	l.Debug("hidden")
	l.Info("collected", zap.Duration("took", 1500*time.Millisecond))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected debug entry to be dropped, got %d lines", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not json: %v", err)
	}

	if entry["step"] != "collected" {
		t.Fatalf("expected message under step key, got %v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if entry["took"] != "1.5s" {
		t.Fatalf("expected string duration, got %v", entry["took"])
	}
	if _, err := time.Parse(time.RFC3339, entry["time"].(string)); err != nil {
		t.Fatalf("expected RFC3339 time: %v", err)
	}
}

func TestBuildDebugConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")

	l, err := build(false, true, path)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	l.Debug("visible")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "visible") {
		t.Fatalf("expected debug entry, got %q", data)
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	if OrNop(nil) == nil {
		t.Fatal("expected a no-op logger")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Fatal("expected the same logger back")
	}
}
