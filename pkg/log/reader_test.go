package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readFiltered(t *testing.T, path string, filter Filter) []Event {
	t.Helper()
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return read
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
}

func sampleEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, ConnectionID: "conn-A", Direction: DirectionLocal, Layer: LayerConnection, Category: CategoryState,
			StateChange: &StateChangeEvent{Entity: StateEntityConnection, OldState: "DISCONNECTED", NewState: "CONNECTING"}},
		{Timestamp: base.Add(time.Second), ConnectionID: "conn-A", Direction: DirectionOut, Layer: LayerCommand, Category: CategoryCommand,
			Write: &WriteEvent{Characteristic: "fff1", Data: []byte{0}, Command: "OFF", Acked: true}},
		{Timestamp: base.Add(2 * time.Second), ConnectionID: "conn-A", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryNotification,
			Notification: NewNotificationEvent("fff1", []byte{0x2a})},
		{Timestamp: base.Add(3 * time.Second), ConnectionID: "conn-B", Direction: DirectionOut, Layer: LayerCommand, Category: CategoryCommand,
			Write: &WriteEvent{Characteristic: "fff1", Data: []byte{1}, Command: "WATER"}},
		{Timestamp: base.Add(4 * time.Second), ConnectionID: "conn-B", Direction: DirectionLocal, Layer: LayerCommand, Category: CategoryError,
			Error: &ErrorEventData{Layer: LayerCommand, Message: "boom", Kind: "write failed"}},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(time.Now()))

	read := readFiltered(t, path, Filter{})
	if len(read) != 5 {
		t.Fatalf("got %d events, want 5", len(read))
	}
	if read[0].StateChange == nil || read[0].StateChange.NewState != "CONNECTING" {
		t.Errorf("first event: got %+v", read[0].StateChange)
	}
	if read[4].Error == nil || read[4].Error.Kind != "write failed" {
		t.Errorf("last event: got %+v", read[4].Error)
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.glog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if event, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	out := DirectionOut
	cmdLayer := LayerCommand
	errCat := CategoryError
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"connection", Filter{ConnectionID: "conn-A"}, 3},
		{"direction", Filter{Direction: &out}, 2},
		{"layer", Filter{Layer: &cmdLayer}, 3},
		{"category", Filter{Category: &errCat}, 1},
		{"time range", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"command", Filter{Command: "WATER"}, 1},
		{"combined", Filter{ConnectionID: "conn-A", Direction: &out, Layer: &cmdLayer}, 1},
		{"no match", Filter{DeviceID: "other"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(readFiltered(t, path, tt.filter)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReadAll(t *testing.T) {
	path := createTestLogFile(t, sampleEvents(time.Now()))

	events, err := ReadAll(path, Filter{ConnectionID: "conn-B"})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if _, err := ReadAll(filepath.Join(t.TempDir(), "missing.glog"), Filter{}); err == nil {
		t.Error("expected error for missing file")
	}
}
