package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vtrack.log")

	logger, err := NewFile(path, "main")
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	logger.Info("suggestions fetched")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q: %v", line, err)
	}
	if entry["msg"] != "suggestions fetched" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["profile"] != "main" {
		t.Errorf("profile = %v, want main", entry["profile"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestNewCreatesLogDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "vtrackd.log")
	if _, err := New(path, "main"); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}
