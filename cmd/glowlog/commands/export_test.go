package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nutriglow/nutriglow-go/pkg/log"
)

// createTestLogFile writes events to a temporary capture file.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.glog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// sessionEvents is a short connect, send WATER, link lost sequence.
func sessionEvents() []log.Event {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	elapsed := 1200 * time.Microsecond
	return []log.Event{
		{
			Timestamp:    ts,
			ConnectionID: "c0ffee01-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionLocal,
			Layer:        log.LayerConnection,
			Category:     log.CategoryState,
			DeviceID:     "AA:BB:CC:DD:EE:FF",
			DeviceName:   "NutriGlow-1A2B",
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityConnection,
				OldState: "CONNECTING",
				NewState: "CONNECTED",
			},
		},
		{
			Timestamp:    ts.Add(time.Second),
			ConnectionID: "c0ffee01-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionOut,
			Layer:        log.LayerCommand,
			Category:     log.CategoryCommand,
			DeviceID:     "AA:BB:CC:DD:EE:FF",
			DeviceName:   "NutriGlow-1A2B",
			Write: &log.WriteEvent{
				Characteristic: "0000fff1-0000-1000-8000-00805f9b34fb",
				Data:           []byte{0x01},
				Acked:          true,
				Command:        "WATER",
				Duration:       &elapsed,
			},
		},
		{
			Timestamp:    ts.Add(2 * time.Second),
			ConnectionID: "c0ffee01-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionIn,
			Layer:        log.LayerTransport,
			Category:     log.CategoryNotification,
			Notification: log.NewNotificationEvent("0000fff1-0000-1000-8000-00805f9b34fb", []byte{0x01, 0x02}),
		},
		{
			Timestamp:    ts.Add(3 * time.Second),
			ConnectionID: "c0ffee01-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionLocal,
			Layer:        log.LayerConnection,
			Category:     log.CategoryError,
			Error: &log.ErrorEventData{
				Layer:   log.LayerTransport,
				Message: "link lost",
				Kind:    "disconnected",
			},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunExport(path, log.Filter{}, "jsonl", "", &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if decoded["DeviceName"] != "NutriGlow-1A2B" {
		t.Errorf("expected DeviceName, got %v", decoded["DeviceName"])
	}
	write, ok := decoded["Write"].(map[string]any)
	if !ok {
		t.Fatalf("expected Write object, got %v", decoded["Write"])
	}
	if write["Command"] != "WATER" {
		t.Errorf("expected Command WATER, got %v", write["Command"])
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunExport(path, log.Filter{}, "csv", "", &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "timestamp" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	write := rows[2]
	if write[2] != "OUT" || write[3] != "COMMAND" || write[7] != "WATER" {
		t.Errorf("unexpected write row: %v", write)
	}
	if write[8] != "01" || write[9] != "true" {
		t.Errorf("expected data 01 acked true, got %q %q", write[8], write[9])
	}
}

func TestExportFiltered(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	dir := log.DirectionOut
	var buf bytes.Buffer
	if err := RunExport(path, log.Filter{Direction: &dir}, "jsonl", "", &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestExportToFile(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, log.Filter{}, "jsonl", out, nil); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if strings.Count(string(data), "\n") != 4 {
		t.Errorf("expected 4 lines in %s", out)
	}
}

func TestExportErrors(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunExport(path, log.Filter{}, "xml", "", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
	if err := RunExport(filepath.Join(t.TempDir(), "missing.glog"), log.Filter{}, "jsonl", "", &buf); err == nil {
		t.Error("expected error for missing file")
	}
}
