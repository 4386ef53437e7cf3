// Package notify defines the Notification Sink used to raise local alerts
// on accessory events, and a set of sinks.
//
// Sinks are fire-and-forget: Notify must not block for long and its
// failures are ignored by callers.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Kind classifies a notification.
type Kind uint8

const (
	// Connected is raised when the accessory link is established.
	Connected Kind = iota
	// Disconnected is raised when an established link ends.
	Disconnected
	// Error is raised on connect, reconnect or write failures.
	Error
	// HydrationReminder is raised after a WATER command is delivered.
	HydrationReminder
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Connected:
		return "CONNECTED"
	case Disconnected:
		return "DISCONNECTED"
	case Error:
		return "ERROR"
	case HydrationReminder:
		return "HYDRATION_REMINDER"
	default:
		return "UNKNOWN"
	}
}

// Sink receives notifications.
type Sink interface {
	Notify(kind Kind, message string)
}

// Func adapts a function to a Sink.
type Func func(kind Kind, message string)

// Notify calls f.
func (f Func) Notify(kind Kind, message string) {
	f(kind, message)
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(Kind, string) {}

// Multi fans a notification out to several sinks in order.
type Multi []Sink

// NewMulti returns a Multi of the non-nil sinks.
func NewMulti(sinks ...Sink) Multi {
	var m Multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

// Notify forwards to every sink. A panicking sink does not stop the others.
func (m Multi) Notify(kind Kind, message string) {
	for _, s := range m {
		Safe(s, kind, message)
	}
}

// Safe calls s.Notify, recovering any panic. It reports whether the call
// completed normally.
func Safe(s Sink, kind Kind, message string) (ok bool) {
	if s == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	s.Notify(kind, message)
	return true
}

// LogSink writes notifications to an slog.Logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Notify logs at Warn for Error and Info otherwise.
func (s *LogSink) Notify(kind Kind, message string) {
	level := slog.LevelInfo
	if kind == Error {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(context.Background(), level, "accessory notification",
		slog.String("kind", kind.String()),
		slog.String("message", message),
	)
}

// Notification is one recorded notification.
type Notification struct {
	Kind    Kind
	Message string
}

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records the notification.
func (r *Recorder) Notify(kind Kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Kind: kind, Message: message})
}

// Notifications returns a copy of the recorded notifications.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// Reset clears the recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Compile-time interface satisfaction checks.
var (
	_ Sink = Func(nil)
	_ Sink = Nop{}
	_ Sink = Multi(nil)
	_ Sink = (*LogSink)(nil)
	_ Sink = (*Recorder)(nil)
)
