package commands

import (
	"path/filepath"
	"testing"

	"github.com/nutriglow/nutriglow-go/pkg/log"
)

func TestRunFilter(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())
	out := filepath.Join(t.TempDir(), "writes.glog")

	n, err := RunFilter(path, log.Filter{Command: "WATER"}, out)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("RunFilter copied %d events, want 1", n)
	}

	events, err := log.ReadAll(out, log.Filter{})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 1 || events[0].Write == nil || events[0].Write.Command != "WATER" {
		t.Errorf("unexpected filtered events %+v", events)
	}
	if events[0].DeviceName != "NutriGlow-1A2B" {
		t.Errorf("DeviceName = %q", events[0].DeviceName)
	}
}

func TestRunFilterByConnection(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())
	out := filepath.Join(t.TempDir(), "none.glog")

	n, err := RunFilter(path, log.Filter{ConnectionID: "nope"}, out)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 0 {
		t.Errorf("RunFilter copied %d events, want 0", n)
	}
}

func TestRunFilterRequiresOutput(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())
	if _, err := RunFilter(path, log.Filter{}, ""); err == nil {
		t.Error("expected error without output")
	}
}
