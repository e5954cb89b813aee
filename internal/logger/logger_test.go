package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	log, err := Build(Options{JSON: true, Output: path, Name: "engine"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug("hidden")
	log.Info("filter step")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the info entry, got %q", lines)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not json: %v", err)
	}
	if entry["step"] != "filter step" || entry["level"] != "info" || entry["component"] != "engine" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestBuildDebug(t *testing.T) {
	log, err := Build(Options{Debug: true, Output: filepath.Join(t.TempDir(), "log")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !log.Core().Enabled(-1) {
		t.Fatal("debug level must be enabled")
	}
}
