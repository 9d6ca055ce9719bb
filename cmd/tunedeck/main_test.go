package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStart(t *testing.T) {
	tmpDir := t.TempDir()

	os.Setenv("TUNEDECK_CONFIG_DIR", tmpDir)
	defer os.Unsetenv("TUNEDECK_CONFIG_DIR")

	// start(false) wires everything up and returns before serving.
	if err := start(false); err != nil {
		t.Fatalf("start(false) failed: %v", err)
	}

	// The tools directory should exist so a first discovery has
	// something to scan.
	toolsDir := filepath.Join(tmpDir, "tools")
	if _, err := os.Stat(toolsDir); os.IsNotExist(err) {
		t.Errorf("Expected directory %s to be created", toolsDir)
	}
}

func TestResolve(t *testing.T) {
	if got := resolve("/app", "runs.yaml"); got != filepath.Join("/app", "runs.yaml") {
		t.Errorf("relative path not resolved under app dir: %s", got)
	}
	if got := resolve("/app", "/abs/runs.yaml"); got != "/abs/runs.yaml" {
		t.Errorf("absolute path should pass through: %s", got)
	}
}
