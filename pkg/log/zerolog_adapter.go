package log

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter writes protocol events to a zerolog.Logger at Debug level.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a ZerologAdapter writing to logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log writes the event.
func (a *ZerologAdapter) Log(event Event) {
	e := a.logger.Debug()
	if !e.Enabled() {
		return
	}

	e = e.Str("conn_id", event.ConnectionID).
		Str("direction", event.Direction.String()).
		Str("layer", event.Layer.String()).
		Str("category", event.Category.String())
	if event.DeviceName != "" {
		e = e.Str("device_name", event.DeviceName)
	}

	switch {
	case event.Write != nil:
		e = e.Str("char", event.Write.Characteristic).
			Hex("data", event.Write.Data).
			Bool("acked", event.Write.Acked)
		if event.Write.Command != "" {
			e = e.Str("command", event.Write.Command)
		}
		if event.Write.Fallback {
			e = e.Bool("fallback", true)
		}
		if event.Write.Duration != nil {
			e = e.Dur("duration", *event.Write.Duration)
		}
	case event.Notification != nil:
		e = e.Str("char", event.Notification.Characteristic).
			Int("size", event.Notification.Size).
			Hex("data", event.Notification.Data)
	case event.StateChange != nil:
		e = e.Str("entity", event.StateChange.Entity.String()).
			Str("old_state", event.StateChange.OldState).
			Str("new_state", event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			e = e.Str("reason", event.StateChange.Reason)
		}
		if event.StateChange.Attempt > 0 {
			e = e.Int("attempt", event.StateChange.Attempt)
		}
	case event.Error != nil:
		e = e.Str("error_layer", event.Error.Layer.String()).
			Str("error_msg", event.Error.Message).
			Str("error_kind", event.Error.Kind).
			Str("error_context", event.Error.Context)
	}

	e.Time("event_time", event.Timestamp).Msg("protocol")
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
