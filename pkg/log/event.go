package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies one connect attempt and the session it produced (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to this host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DeviceID is the transport identifier of the accessory.
	DeviceID string `cbor:"6,keyasint,omitempty"`

	// DeviceName is the advertised accessory name.
	DeviceName string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Write        *WriteEvent        `cbor:"10,keyasint,omitempty"` // Command writes
	Notification *NotificationEvent `cbor:"11,keyasint,omitempty"` // Value-change notifications
	StateChange  *StateChangeEvent  `cbor:"12,keyasint,omitempty"` // Connection/reconnect state
	Error        *ErrorEventData    `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the accessory.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the accessory.
	DirectionOut Direction = 1
	// DirectionLocal indicates a host-side event with no data on the link.
	DirectionLocal Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the GATT layer (raw characteristic bytes).
	LayerTransport Layer = 0
	// LayerCommand is the command codec layer.
	LayerCommand Layer = 1
	// LayerConnection is the connection manager layer.
	LayerConnection Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerCommand:
		return "COMMAND"
	case LayerConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a command write.
	CategoryCommand Category = 0
	// CategoryNotification indicates a characteristic notification.
	CategoryNotification Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// WriteEvent captures one characteristic write.
type WriteEvent struct {
	// Characteristic is the UUID written to.
	Characteristic string `cbor:"1,keyasint"`

	// Data is the payload written.
	Data []byte `cbor:"2,keyasint"`

	// Acked is true for write-with-response.
	Acked bool `cbor:"3,keyasint,omitempty"`

	// Command is the decoded command name, if Data is a single command byte.
	Command string `cbor:"4,keyasint,omitempty"`

	// Fallback is true when this write retried an acked write rejected as unsupported.
	Fallback bool `cbor:"5,keyasint,omitempty"`

	// Duration is how long the write took. Stored as nanoseconds.
	Duration *time.Duration `cbor:"6,keyasint,omitempty"`
}

// NotificationEvent captures a value-change notification from the accessory.
type NotificationEvent struct {
	// Characteristic is the UUID that notified.
	Characteristic string `cbor:"1,keyasint"`

	// Data is the notified value (may be truncated for large values).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Size is the original value length.
	Size int `cbor:"3,keyasint"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// MaxNotificationData is the number of notification bytes kept in an event.
const MaxNotificationData = 64

// NewNotificationEvent builds a NotificationEvent, truncating data to
// MaxNotificationData bytes.
func NewNotificationEvent(characteristic string, data []byte) *NotificationEvent {
	n := &NotificationEvent{Characteristic: characteristic, Size: len(data)}
	if len(data) > MaxNotificationData {
		n.Data = append([]byte(nil), data[:MaxNotificationData]...)
		n.Truncated = true
	} else {
		n.Data = append([]byte(nil), data...)
	}
	return n
}

// StateChangeEvent captures connection and reconnect lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`

	// Attempt is the reconnect attempt number, 1-based (0 if not applicable).
	Attempt int `cbor:"5,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityReconnect indicates a reconnect sequence step.
	StateEntityReconnect StateEntity = 1
	// StateEntityEndpoint indicates command endpoint resolution.
	StateEntityEndpoint StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityReconnect:
		return "RECONNECT"
	case StateEntityEndpoint:
		return "ENDPOINT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the error class (e.g. "unavailable", "write failed").
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
