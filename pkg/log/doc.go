// Package log provides structured protocol logging for accessory links.
//
// This package defines the Logger interface and Event types for capturing
// link-level events at multiple layers (GATT transport, command codec,
// connection manager). It is separate from operational logging (slog):
// protocol capture provides a complete machine-readable trace of what was
// written to and received from the accessory.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	accessory.New(p, accessory.WithProtocolLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For production: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/nutriglow/link.glog")
//
//	// Both: use MultiLogger
//	log.NewMultiLogger(log.NewZerologAdapter(zl), fl)
//
// # Event Types
//
//   - Command writes (WriteEvent), outgoing
//   - Characteristic notifications (NotificationEvent), incoming
//   - State changes of the connection and reconnect sequence (StateChangeEvent)
//   - Errors at any layer (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .glog extension.
// The glowlog CLI provides viewing, filtering, statistics and export.
package log
