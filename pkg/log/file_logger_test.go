package log

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func decodeAll(t *testing.T, path string) []Event {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	dec := NewDecoder(bytes.NewReader(data))
	var events []Event
	for {
		var e Event
		if err := dec.Decode(&e); err != nil {
			if err != io.EOF {
				t.Fatalf("decode: %v", err)
			}
			return events
		}
		events = append(events, e)
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionOut,
		Layer:        LayerCommand,
		Category:     CategoryCommand,
		Write: &WriteEvent{
			Characteristic: "0000fff1-0000-1000-8000-00805f9b34fb",
			Data:           []byte{0x01},
			Acked:          true,
			Command:        "WATER",
		},
	})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := decodeAll(t, path)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.ConnectionID != "conn-123" {
		t.Errorf("ConnectionID: got %q, want %q", got.ConnectionID, "conn-123")
	}
	if got.Write == nil {
		t.Fatal("Write is nil")
	}
	if got.Write.Command != "WATER" || !got.Write.Acked {
		t.Errorf("Write: got %+v", got.Write)
	}
	if !bytes.Equal(got.Write.Data, []byte{0x01}) {
		t.Errorf("Write.Data: got %x, want 01", got.Write.Data)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.glog")

	for _, id := range []string{"conn-1", "conn-2"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), ConnectionID: id, Category: CategoryState})
		logger.Close()
	}

	events := decodeAll(t, path)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ConnectionID != "conn-1" || events[1].ConnectionID != "conn-2" {
		t.Errorf("unexpected order: %q, %q", events[0].ConnectionID, events[1].ConnectionID)
	}
}

func TestFileLoggerThreadSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				logger.Log(Event{
					Timestamp:    time.Now(),
					ConnectionID: "conn-" + string(rune('A'+id)),
					Direction:    DirectionIn,
					Category:     CategoryNotification,
					Notification: NewNotificationEvent("fff1", []byte{byte(j)}),
				})
			}
		}(i)
	}
	wg.Wait()
	logger.Close()

	if got := len(decodeAll(t, path)); got != workers*perWorker {
		t.Errorf("event count: got %d, want %d", got, workers*perWorker)
	}
}

func TestFileLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{Timestamp: time.Now(), ConnectionID: "conn-1"})

	if err := logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Ignored after close.
	logger.Log(Event{Timestamp: time.Now(), ConnectionID: "conn-2"})

	if got := len(decodeAll(t, path)); got != 1 {
		t.Errorf("event count: got %d, want 1", got)
	}
}

func TestFileLoggerWritesMagicOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.glog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		if logger.Path() != path {
			t.Errorf("Path: got %q, want %q", logger.Path(), path)
		}
		logger.Log(Event{Timestamp: time.Now(), ConnectionID: "conn-1"})
		if logger.Dropped() != 0 {
			t.Errorf("Dropped: got %d, want 0", logger.Dropped())
		}
		logger.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, FileMagic) {
		t.Fatalf("file does not start with magic: % x", data[:3])
	}
	if bytes.Count(data, FileMagic) != 1 {
		t.Errorf("magic written %d times, want 1", bytes.Count(data, FileMagic))
	}
}

func TestDecoderAcceptsBareStream(t *testing.T) {
	data, err := EncodeEvent(Event{ConnectionID: "conn-1"})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var e Event
	if err := NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if e.ConnectionID != "conn-1" {
		t.Errorf("ConnectionID: got %q", e.ConnectionID)
	}
}
