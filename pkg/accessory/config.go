package accessory

import (
	"log/slog"
	"time"

	"github.com/nutriglow/nutriglow-go/pkg/connection"
	plog "github.com/nutriglow/nutriglow-go/pkg/log"
	"github.com/nutriglow/nutriglow-go/pkg/notify"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
)

// Defaults.
const (
	// DefaultAttemptTimeout bounds one reconnect attempt (open and resolve).
	DefaultAttemptTimeout = 30 * time.Second
)

// Config holds Manager tuning.
type Config struct {
	// MaxAttempts is the number of reconnect attempts after a link loss.
	MaxAttempts int

	// BaseDelay is the reconnect delay unit; attempt n waits n times this.
	BaseDelay time.Duration

	// AttemptTimeout bounds each reconnect attempt. Zero disables the bound.
	AttemptTimeout time.Duration

	// SkipReset disables the OFF command sent after every connect.
	SkipReset bool
}

// DefaultConfig returns the default configuration: 3 attempts at 1s, 2s, 3s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    connection.DefaultMaxAttempts,
		BaseDelay:      connection.DefaultBaseDelay,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithConfig replaces the configuration. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		if cfg.MaxAttempts > 0 {
			m.cfg.MaxAttempts = cfg.MaxAttempts
		}
		if cfg.BaseDelay > 0 {
			m.cfg.BaseDelay = cfg.BaseDelay
		}
		if cfg.AttemptTimeout > 0 {
			m.cfg.AttemptTimeout = cfg.AttemptTimeout
		}
		m.cfg.SkipReset = cfg.SkipReset
	}
}

// WithMaxAttempts sets the reconnect attempt limit.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.cfg.MaxAttempts = n
		}
	}
}

// WithBaseDelay sets the reconnect delay unit.
func WithBaseDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.cfg.BaseDelay = d
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSink sets the notification sink.
func WithSink(sink notify.Sink) Option {
	return func(m *Manager) {
		if sink != nil {
			m.sink = sink
		}
	}
}

// WithProtocolLogger sets the protocol event logger.
func WithProtocolLogger(l plog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.protocol = l
		}
	}
}

// WithResolver replaces the capability resolver.
func WithResolver(r *resolver.Resolver) Option {
	return func(m *Manager) {
		if r != nil {
			m.resolver = r
		}
	}
}
