package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEventCBORPreservesNanoseconds(t *testing.T) {
	ts := time.Date(2026, 2, 3, 4, 5, 6, 123456789, time.UTC)
	data, err := EncodeEvent(Event{Timestamp: ts, ConnectionID: "c"})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, ts)
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	data, err := EncodeEvent(Event{ConnectionID: "conn-1"})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if bytes.Contains(data, []byte("ConnectionID")) {
		t.Error("encoded event contains field name, expected integer keys")
	}
}

func TestEventCBOROmitsEmptyPayloads(t *testing.T) {
	plain, err := EncodeEvent(Event{ConnectionID: "conn-1"})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	withWrite, err := EncodeEvent(Event{ConnectionID: "conn-1", Write: &WriteEvent{Characteristic: "fff1", Data: []byte{2}}})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if len(withWrite) <= len(plain) {
		t.Errorf("payload not encoded: %d <= %d", len(withWrite), len(plain))
	}

	decoded, err := DecodeEvent(plain)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.Write != nil || decoded.Notification != nil || decoded.StateChange != nil || decoded.Error != nil {
		t.Errorf("unexpected payload decoded: %+v", decoded)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}

func TestNewNotificationEventTruncates(t *testing.T) {
	small := NewNotificationEvent("fff1", []byte{1, 2, 3})
	if small.Truncated || small.Size != 3 || len(small.Data) != 3 {
		t.Errorf("small: got %+v", small)
	}

	big := NewNotificationEvent("fff1", make([]byte, MaxNotificationData+10))
	if !big.Truncated {
		t.Error("big: expected Truncated")
	}
	if big.Size != MaxNotificationData+10 {
		t.Errorf("big.Size: got %d", big.Size)
	}
	if len(big.Data) != MaxNotificationData {
		t.Errorf("big.Data: got %d bytes, want %d", len(big.Data), MaxNotificationData)
	}
}
