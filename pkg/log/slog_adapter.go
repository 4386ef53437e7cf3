package log

import (
	"context"
	"encoding/hex"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see link events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.DeviceName != "" {
		attrs = append(attrs, slog.String("device_name", event.DeviceName))
	}

	switch {
	case event.Write != nil:
		attrs = append(attrs,
			slog.String("char", event.Write.Characteristic),
			slog.String("data", hex.EncodeToString(event.Write.Data)),
			slog.Bool("acked", event.Write.Acked),
		)
		if event.Write.Command != "" {
			attrs = append(attrs, slog.String("command", event.Write.Command))
		}
		if event.Write.Fallback {
			attrs = append(attrs, slog.Bool("fallback", true))
		}
		if event.Write.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.Write.Duration))
		}
	case event.Notification != nil:
		attrs = append(attrs,
			slog.String("char", event.Notification.Characteristic),
			slog.Int("size", event.Notification.Size),
			slog.String("data", hex.EncodeToString(event.Notification.Data)),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
		if event.StateChange.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", event.StateChange.Attempt))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
