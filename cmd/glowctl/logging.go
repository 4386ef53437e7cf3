package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "GLOWCTL_LOG_LEVEL"

// parseLevel maps a level name to zerolog. ok is false for empty or
// unknown names.
func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

// effectiveLevel applies the environment override to the configured level.
func effectiveLevel(configured string) zerolog.Level {
	level, ok := parseLevel(configured)
	if !ok {
		level = zerolog.InfoLevel
	}
	if env, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = env
	}
	return level
}

func slogLevel(l zerolog.Level) slog.Level {
	switch {
	case l <= zerolog.DebugLevel:
		return slog.LevelDebug
	case l == zerolog.InfoLevel:
		return slog.LevelInfo
	case l == zerolog.WarnLevel:
		return slog.LevelWarn
	case l == zerolog.Disabled:
		return slog.Level(100)
	default:
		return slog.LevelError
	}
}

// newLoggers returns a console zerolog logger and an slog logger for the
// library packages that renders through the same console writer.
func newLoggers(out io.Writer, level zerolog.Level) (zerolog.Logger, *slog.Logger) {
	console := zerolog.ConsoleWriter{
		Out:        zerolog.SyncWriter(out),
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(out),
	}
	zl := zerolog.New(console).Level(level).With().Timestamp().Str("app", "glowctl").Logger()

	// slog emits JSON that the console writer re-renders, so both loggers
	// share one format.
	handler := slog.NewJSONHandler(console, &slog.HandlerOptions{
		Level: slogLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.MessageKey:
				a.Key = zerolog.MessageFieldName
			case slog.LevelKey:
				a.Key = zerolog.LevelFieldName
				a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
			case slog.TimeKey:
				a.Key = zerolog.TimestampFieldName
			}
			return a
		},
	})
	return zl, slog.New(handler)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// switchWriter forwards writes to a replaceable destination. Interactive
// mode points it at the prompt once readline is up.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) Set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}
