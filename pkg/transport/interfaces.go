package transport

import (
	"context"
	"errors"
	"strings"
)

// Transport errors.
var (
	// ErrUnavailable indicates the wireless stack is absent, powered off or
	// otherwise unusable on this host.
	ErrUnavailable = errors.New("bluetooth unavailable")

	// ErrCancelled indicates device selection was aborted by the user or platform.
	ErrCancelled = errors.New("device selection cancelled")

	// ErrNoDevice indicates device selection finished without a matching accessory.
	ErrNoDevice = errors.New("no matching device")

	// ErrPermissionDenied indicates the platform refused access.
	ErrPermissionDenied = errors.New("bluetooth permission denied")

	// ErrNotFound indicates a requested service or characteristic does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotSupported indicates the remote rejected the operation as unsupported.
	ErrNotSupported = errors.New("operation not supported")

	// ErrClosed indicates the session is closed.
	ErrClosed = errors.New("session closed")
)

// Device identifies a selected accessory.
type Device struct {
	// ID is the platform identifier (MAC address, BlueZ object path or peripheral ID).
	ID string

	// Name is the advertised display name, if known.
	Name string

	// Address is the Bluetooth address, if known.
	Address string
}

// DisplayName returns Name, falling back to ID.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// WriteMode selects how a characteristic write is delivered.
type WriteMode uint8

const (
	// WriteWithResponse waits for the remote's write response (acknowledged).
	WriteWithResponse WriteMode = iota

	// WriteWithoutResponse sends a write command (unacknowledged).
	WriteWithoutResponse
)

// String returns the write mode name.
func (m WriteMode) String() string {
	switch m {
	case WriteWithResponse:
		return "acked"
	case WriteWithoutResponse:
		return "unacked"
	default:
		return "unknown"
	}
}

// Properties is the GATT characteristic property bit field.
type Properties uint8

// Characteristic property bits.
const (
	PropBroadcast            Properties = 0x01
	PropRead                 Properties = 0x02
	PropWriteWithoutResponse Properties = 0x04
	PropWrite                Properties = 0x08
	PropNotify               Properties = 0x10
	PropIndicate             Properties = 0x20
)

var propertyNames = []struct {
	p    Properties
	name string
}{
	{PropBroadcast, "broadcast"},
	{PropRead, "read"},
	{PropWriteWithoutResponse, "write-without-response"},
	{PropWrite, "write"},
	{PropNotify, "notify"},
	{PropIndicate, "indicate"},
}

// Has reports whether all bits in q are set.
func (p Properties) Has(q Properties) bool {
	return p&q == q
}

// Writable reports whether either write mode is advertised.
func (p Properties) Writable() bool {
	return p&(PropWrite|PropWriteWithoutResponse) != 0
}

// String returns the set property names joined by "|".
func (p Properties) String() string {
	var names []string
	for _, pn := range propertyNames {
		if p.Has(pn.p) {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseFlags converts BlueZ-style flag names ("read", "write", ...) into Properties.
// Unknown names are ignored.
func ParseFlags(flags []string) Properties {
	var p Properties
	for _, f := range flags {
		for _, pn := range propertyNames {
			if strings.EqualFold(f, pn.name) {
				p |= pn.p
			}
		}
	}
	return p
}

// Provider selects accessories and opens sessions to them.
type Provider interface {
	// RequestDevice selects an accessory. It may block on user or platform
	// interaction and must return when ctx is cancelled.
	RequestDevice(ctx context.Context) (Device, error)

	// Open establishes a GATT session to dev.
	Open(ctx context.Context, dev Device) (Session, error)
}

// Session is an open link to one accessory.
type Session interface {
	// Device returns the accessory this session is connected to.
	Device() Device

	// Service looks up a primary service by UUID.
	// Returns an error wrapping ErrNotFound if the service is absent.
	Service(ctx context.Context, uuid string) (Service, error)

	// Services enumerates all primary services in platform order.
	Services(ctx context.Context) ([]Service, error)

	// LinkLost returns a channel that is closed when the link drops without
	// the local side calling Close.
	LinkLost() <-chan struct{}

	// Close tears down the link. It is safe to call more than once.
	Close() error
}

// Service is a GATT primary service on an open session.
type Service interface {
	// UUID returns the service UUID in lower-case canonical form.
	UUID() string

	// Characteristic looks up a characteristic by UUID.
	// Returns an error wrapping ErrNotFound if it is absent.
	Characteristic(ctx context.Context, uuid string) (Characteristic, error)

	// Characteristics enumerates the service's characteristics in platform order.
	Characteristics(ctx context.Context) ([]Characteristic, error)
}

// Characteristic is a GATT characteristic on an open session.
type Characteristic interface {
	// UUID returns the characteristic UUID in lower-case canonical form.
	UUID() string

	// Properties returns the advertised capability flags.
	Properties() Properties

	// Write writes data using the given mode.
	Write(ctx context.Context, data []byte, mode WriteMode) error

	// Subscribe enables value-change notifications, delivering each value to fn.
	Subscribe(ctx context.Context, fn func([]byte)) error
}

// NormalizeUUID lower-cases a UUID string and trims surrounding space.
func NormalizeUUID(uuid string) string {
	return strings.ToLower(strings.TrimSpace(uuid))
}

// SameUUID compares two UUID strings case-insensitively.
func SameUUID(a, b string) bool {
	return NormalizeUUID(a) == NormalizeUUID(b)
}
