package bluez

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// BlueZ and bus error names that map onto transport sentinels.
const (
	errInProgress     = "org.bluez.Error.InProgress"
	errAlreadyConn    = "org.bluez.Error.AlreadyConnected"
	errNotReady       = "org.bluez.Error.NotReady"
	errNotAvailable   = "org.bluez.Error.NotAvailable"
	errNotSupported   = "org.bluez.Error.NotSupported"
	errNotPermitted   = "org.bluez.Error.NotPermitted"
	errNotAuthorized  = "org.bluez.Error.NotAuthorized"
	errNotConnected   = "org.bluez.Error.NotConnected"
	errDoesNotExist   = "org.bluez.Error.DoesNotExist"
	errAccessDenied   = "org.freedesktop.DBus.Error.AccessDenied"
	errServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	errUnknownObject  = "org.freedesktop.DBus.Error.UnknownObject"
	errUnknownMethod  = "org.freedesktop.DBus.Error.UnknownMethod"
)

// errorName returns the D-Bus error name carried by err, or "".
func errorName(err error) string {
	var e dbus.Error
	if errors.As(err, &e) {
		return e.Name
	}
	var pe *dbus.Error
	if errors.As(err, &pe) && pe != nil {
		return pe.Name
	}
	return ""
}

// translate wraps a bus error with the matching transport sentinel.
// Errors with no mapping are returned with op context only.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var sentinel error
	switch errorName(err) {
	case errNotReady, errNotAvailable, errServiceUnknown:
		sentinel = transport.ErrUnavailable
	case errAccessDenied, errNotAuthorized:
		sentinel = transport.ErrPermissionDenied
	case errNotSupported, errNotPermitted, errUnknownMethod:
		sentinel = transport.ErrNotSupported
	case errNotConnected:
		sentinel = transport.ErrClosed
	case errDoesNotExist, errUnknownObject:
		sentinel = transport.ErrNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel, err)
}
