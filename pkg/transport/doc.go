// Package transport defines the wireless transport contract used by the
// NutriGlow accessory link.
//
// A Provider wraps the host's Bluetooth Low Energy stack. It selects an
// accessory (RequestDevice) and opens a GATT session to it (Open). A Session
// exposes the accessory's services and characteristics in the order the
// platform reports them, and signals unsolicited link loss through the
// channel returned by LinkLost.
//
// # Implementations
//
//   - bluez: BlueZ over the system D-Bus (Linux desktop and embedded)
//   - hci: raw HCI user channel via github.com/paypal/gatt (Linux)
//   - sim: in-memory accessory for tests and demo mode
//
// # Errors
//
// Providers translate platform failures into the sentinel errors declared in
// this package (ErrUnavailable, ErrCancelled, ErrNoDevice,
// ErrPermissionDenied, ErrNotFound, ErrNotSupported, ErrClosed), wrapping the
// platform error so that both can be inspected with errors.Is.
//
// # Capability Flags
//
// Characteristic capabilities use the Bluetooth Core property bit layout:
//
//	0x01 broadcast
//	0x02 read
//	0x04 write without response
//	0x08 write (acknowledged)
//	0x10 notify
//	0x20 indicate
package transport
