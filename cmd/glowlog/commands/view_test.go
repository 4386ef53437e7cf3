package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nutriglow/nutriglow-go/pkg/log"
)

func TestFormatWriteEvent(t *testing.T) {
	events := sessionEvents()

	var buf bytes.Buffer
	formatEvent(&buf, events[1])
	output := buf.String()

	for _, want := range []string{
		"2026-03-14T09:30:01.000000Z",
		"[conn:c0ffee01]",
		"OUT",
		"COMMAND WATER",
		"Device: NutriGlow-1A2B (AA:BB:CC:DD:EE:FF)",
		"Characteristic: 0000fff1-0000-1000-8000-00805f9b34fb",
		"Data: 01  Mode: acked",
		"Duration: 1.200ms",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatFallbackWrite(t *testing.T) {
	event := log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerCommand,
		Write:     &log.WriteEvent{Data: []byte{0x03}, Fallback: true},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "[conn:-]") {
		t.Errorf("expected placeholder connection ID, got: %s", output)
	}
	if !strings.Contains(output, " Write\n") {
		t.Errorf("expected Write label, got: %s", output)
	}
	if !strings.Contains(output, "Mode: unacked (fallback)") {
		t.Errorf("expected fallback mode, got: %s", output)
	}
}

func TestFormatNotificationEvent(t *testing.T) {
	data := bytes.Repeat([]byte{0xab}, log.MaxNotificationData+10)
	event := log.Event{
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Notification: log.NewNotificationEvent("fff1", data),
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "IN    TRANSPORT Notification") {
		t.Errorf("expected notification header, got: %s", output)
	}
	if !strings.Contains(output, "Size: 74 bytes") {
		t.Errorf("expected original size, got: %s", output)
	}
	if !strings.Contains(output, "(truncated)") {
		t.Errorf("expected truncation marker, got: %s", output)
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Direction: log.DirectionLocal,
		Layer:     log.LayerConnection,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityReconnect,
			NewState: "RECONNECTING",
			Attempt:  2,
			Reason:   "link lost",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"Entity: RECONNECT", "  -> RECONNECTING", "Attempt: 2", "Reason: link lost"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatErrorEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sessionEvents()[3])
	output := buf.String()

	for _, want := range []string{"Error", "Layer: TRANSPORT", "Message: link lost", "Kind: disconnected"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{1500 * time.Microsecond, "1.500ms"},
		{2500 * time.Millisecond, "2.500s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayer("Command"); err != nil || l != log.LayerCommand {
		t.Errorf("ParseLayer(Command) = %v, %v", l, err)
	}
	if _, err := ParseLayer("wire"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if d, err := ParseDirection("LOCAL"); err != nil || d != log.DirectionLocal {
		t.Errorf("ParseDirection(LOCAL) = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if c, err := ParseCategory("notification"); err != nil || c != log.CategoryNotification {
		t.Errorf("ParseCategory(notification) = %v, %v", c, err)
	}
	if _, err := ParseCategory("snapshot"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestFilterOptionsBuild(t *testing.T) {
	filter, err := FilterOptions{
		ConnID:    "c0ffee01",
		Direction: "out",
		Category:  "command",
		Command:   "great-finish",
		TimeStart: "2026-03-14T09:30:00Z",
	}.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if filter.ConnectionID != "c0ffee01" {
		t.Errorf("ConnectionID = %q", filter.ConnectionID)
	}
	if filter.Direction == nil || *filter.Direction != log.DirectionOut {
		t.Errorf("Direction = %v", filter.Direction)
	}
	if filter.Category == nil || *filter.Category != log.CategoryCommand {
		t.Errorf("Category = %v", filter.Category)
	}
	if filter.Command != "GREAT_FINISH" {
		t.Errorf("Command = %q", filter.Command)
	}
	if filter.TimeStart == nil || filter.TimeEnd != nil {
		t.Errorf("unexpected time range %v %v", filter.TimeStart, filter.TimeEnd)
	}

	for _, bad := range []FilterOptions{
		{Layer: "wire"},
		{Direction: "up"},
		{Category: "control"},
		{Command: "sparkle"},
		{TimeEnd: "yesterday"},
	} {
		if _, err := bad.Build(); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	cat := log.CategoryCommand
	var buf bytes.Buffer
	if err := RunView(path, log.Filter{Category: &cat}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "COMMAND WATER") {
		t.Errorf("expected write event, got: %s", output)
	}
	if strings.Contains(output, "Notification") || strings.Contains(output, "State") {
		t.Errorf("expected only command events, got: %s", output)
	}
}

func TestRunViewAll(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if n := strings.Count(buf.String(), "[conn:c0ffee01]"); n != 4 {
		t.Errorf("expected 4 events, got %d", n)
	}
}
