// Package accessory manages the link to a NutriGlow accessory.
//
// A Manager connects through a transport.Provider, resolves the command
// endpoint with a resolver.Resolver, delivers command codes through a
// command.Channel and recovers unsolicited link loss with a
// connection.Supervisor.
//
// # States
//
//	DISCONNECTED -> CONNECTING -> CONNECTED -> RECONNECTING -> CONNECTED
//	                     |                           |
//	                     v                           v
//	                  FAILED                      FAILED
//
// Disconnect moves any state to DISCONNECTED. A cancelled device selection
// returns to DISCONNECTED rather than FAILED.
//
// # Errors
//
// Operations return errors wrapping one of the class sentinels
// (ErrUnavailable, ErrUserCancelled, ErrPermissionDenied, ErrNoEndpointFound,
// ErrDeviceDisconnected, ErrWriteFailed, ErrNotConnected, ...) together with
// the underlying cause, so errors.Is matches either.
//
// # Usage
//
//	m := accessory.New(provider, accessory.WithSink(sink))
//	if err := m.Connect(ctx); err != nil {
//	    return err
//	}
//	defer m.Close()
//	err := m.SendCommand(ctx, command.Water)
package accessory
