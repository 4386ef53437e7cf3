package accessory

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutriglow/nutriglow-go/pkg/command"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Error classes returned by Manager operations. Returned errors wrap both
// the class and the underlying cause.
var (
	// ErrUnavailable means the host has no usable wireless stack.
	ErrUnavailable = errors.New("bluetooth unavailable")

	// ErrUserCancelled means device selection was aborted, or the connect
	// was abandoned by Disconnect.
	ErrUserCancelled = errors.New("user cancelled")

	// ErrPermissionDenied means the platform refused access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoEndpointFound means no writable characteristic was found.
	ErrNoEndpointFound = errors.New("no usable endpoint found")

	// ErrDeviceDisconnected means the link dropped and could not be recovered.
	ErrDeviceDisconnected = errors.New("device disconnected")

	// ErrWriteFailed means the transport rejected a command write.
	ErrWriteFailed = errors.New("write failed")

	// ErrNotConnected is returned by SendCommand outside the Connected state.
	ErrNotConnected = errors.New("not connected")

	// ErrConnectFailed covers any other connect failure.
	ErrConnectFailed = errors.New("connection failed")

	// ErrAlreadyConnected is returned by Connect while Connected.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrConnectInProgress is returned by Connect while Connecting or Reconnecting.
	ErrConnectInProgress = errors.New("connect already in progress")

	// ErrInvalidCommand is returned for command codes outside 0..5.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrClosed is returned by operations on a closed Manager.
	ErrClosed = errors.New("manager closed")
)

// taxonomy lists the classes Classify and ErrorKind recognise, most
// specific first.
var taxonomy = []error{
	ErrUserCancelled,
	ErrUnavailable,
	ErrPermissionDenied,
	ErrNoEndpointFound,
	ErrDeviceDisconnected,
	ErrWriteFailed,
	ErrNotConnected,
	ErrAlreadyConnected,
	ErrConnectInProgress,
	ErrInvalidCommand,
	ErrClosed,
	ErrConnectFailed,
}

// Classify maps a transport, resolver or context error from the connect
// path onto an error class. The result wraps the class and err. Errors that
// already carry a class are returned unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range taxonomy {
		if errors.Is(err, class) {
			return err
		}
	}

	var class error
	switch {
	case errors.Is(err, transport.ErrCancelled),
		errors.Is(err, transport.ErrNoDevice),
		errors.Is(err, context.Canceled):
		class = ErrUserCancelled
	case errors.Is(err, transport.ErrUnavailable):
		class = ErrUnavailable
	case errors.Is(err, transport.ErrPermissionDenied):
		class = ErrPermissionDenied
	case errors.Is(err, resolver.ErrNoEndpoint):
		class = ErrNoEndpointFound
	case errors.Is(err, command.ErrInvalidCode):
		class = ErrInvalidCommand
	default:
		class = ErrConnectFailed
	}
	return wrap(class, err)
}

// ErrorKind returns the short message for err's class, as stored in
// Status.LastError. Unclassified errors report as a connect failure.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, class := range taxonomy {
		if errors.Is(err, class) {
			return class.Error()
		}
	}
	return ErrorKind(Classify(err))
}

func wrap(class, cause error) error {
	if cause == nil || cause == class {
		return class
	}
	return fmt.Errorf("%w: %w", class, cause)
}
