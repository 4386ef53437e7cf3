package notify

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

// freedesktop notification service.
const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsNotify = "org.freedesktop.Notifications.Notify"
)

// Urgency levels defined by the desktop notifications specification.
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// caller is the subset of dbus.BusObject used by DesktopSink.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DesktopSink raises notifications through org.freedesktop.Notifications
// on the session bus.
type DesktopSink struct {
	conn    *dbus.Conn
	obj     caller
	appName string
	icon    string
	timeout time.Duration
}

// DesktopOption configures a DesktopSink.
type DesktopOption func(*DesktopSink)

// WithIcon sets the icon name or path shown with notifications.
func WithIcon(icon string) DesktopOption {
	return func(s *DesktopSink) { s.icon = icon }
}

// WithTimeout sets how long notifications stay visible. Zero uses the
// server default.
func WithTimeout(d time.Duration) DesktopOption {
	return func(s *DesktopSink) { s.timeout = d }
}

// NewDesktopSink connects to the session bus and returns a sink that posts
// desktop notifications as appName.
func NewDesktopSink(appName string, opts ...DesktopOption) (*DesktopSink, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	s := newDesktopSink(conn.Object(notificationsDest, notificationsPath), appName, opts...)
	s.conn = conn
	return s, nil
}

func newDesktopSink(obj caller, appName string, opts ...DesktopOption) *DesktopSink {
	s := &DesktopSink{obj: obj, appName: appName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify posts a notification without waiting for the server's reply.
func (s *DesktopSink) Notify(kind Kind, message string) {
	expire := int32(-1)
	if s.timeout > 0 {
		expire = int32(s.timeout / time.Millisecond)
	}
	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(urgency(kind)),
		"category": dbus.MakeVariant("device"),
	}
	s.obj.Call(notificationsNotify, dbus.FlagNoReplyExpected,
		s.appName,
		uint32(0),
		s.icon,
		summary(kind),
		message,
		[]string{},
		hints,
		expire,
	)
}

// Close releases the bus connection.
func (s *DesktopSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func summary(kind Kind) string {
	switch kind {
	case Connected:
		return "Accessory connected"
	case Disconnected:
		return "Accessory disconnected"
	case Error:
		return "Accessory problem"
	case HydrationReminder:
		return "Time to drink water"
	default:
		return "Accessory"
	}
}

func urgency(kind Kind) byte {
	switch kind {
	case Error:
		return urgencyCritical
	case HydrationReminder:
		return urgencyNormal
	default:
		return urgencyLow
	}
}

var _ Sink = (*DesktopSink)(nil)
