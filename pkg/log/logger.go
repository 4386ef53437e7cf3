package log

import "time"

// Logger is the interface applications implement to receive protocol log events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records a protocol event. Implementations must be thread-safe.
	// The event should be processed quickly or queued; blocking affects the link.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// ConnectionLogger stamps connection and device identity onto events
// before forwarding them. Fields already set on an event are kept.
type ConnectionLogger struct {
	next         Logger
	connectionID string
	deviceID     string
	deviceName   string
	now          func() time.Time
}

// WithConnection returns a Logger that stamps connID, deviceID and
// deviceName onto every event passed to next. A nil next discards events.
func WithConnection(next Logger, connID, deviceID, deviceName string) *ConnectionLogger {
	if next == nil {
		next = NoopLogger{}
	}
	return &ConnectionLogger{
		next:         next,
		connectionID: connID,
		deviceID:     deviceID,
		deviceName:   deviceName,
		now:          time.Now,
	}
}

// ConnectionID returns the stamped connection ID.
func (l *ConnectionLogger) ConnectionID() string {
	return l.connectionID
}

// Log stamps and forwards the event.
func (l *ConnectionLogger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	if event.ConnectionID == "" {
		event.ConnectionID = l.connectionID
	}
	if event.DeviceID == "" {
		event.DeviceID = l.deviceID
	}
	if event.DeviceName == "" {
		event.DeviceName = l.deviceName
	}
	l.next.Log(event)
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = (*ConnectionLogger)(nil)
)
