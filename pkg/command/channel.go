package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	plog "github.com/nutriglow/nutriglow-go/pkg/log"
	"github.com/nutriglow/nutriglow-go/pkg/notify"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Channel errors.
var (
	// ErrNoWriteCapability is returned when the endpoint advertises neither write mode.
	ErrNoWriteCapability = errors.New("endpoint is not writable")

	// ErrSuperseded is returned by a Send that was still waiting to write
	// when a newer Send arrived.
	ErrSuperseded = errors.New("command superseded")
)

// HydrationMessage is the message raised with a HydrationReminder.
const HydrationMessage = "Time to drink some water"

// Channel writes commands to one resolved endpoint.
//
// Writes never overlap. A Send waiting behind an in-flight write is dropped
// with ErrSuperseded when a newer Send arrives, so the most recent command
// wins without queueing.
type Channel struct {
	endpoint *resolver.Endpoint
	sink     notify.Sink
	protocol plog.Logger
	logger   *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	seq     uint64
	last    Code
	hasLast bool
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithSink sets the notification sink used for hydration reminders.
func WithSink(sink notify.Sink) ChannelOption {
	return func(c *Channel) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithProtocolLogger sets the protocol event logger.
func WithProtocolLogger(l plog.Logger) ChannelOption {
	return func(c *Channel) {
		if l != nil {
			c.protocol = l
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) ChannelOption {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChannel creates a Channel bound to ep.
func NewChannel(ep *resolver.Endpoint, opts ...ChannelOption) *Channel {
	c := &Channel{
		endpoint: ep,
		sink:     notify.Nop{},
		protocol: plog.NoopLogger{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the endpoint the channel writes to.
func (c *Channel) Endpoint() *resolver.Endpoint {
	return c.endpoint
}

// Last returns the last successfully sent code.
func (c *Channel) Last() (Code, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

// Mode returns the write mode Send uses first.
func (c *Channel) Mode() (transport.WriteMode, error) {
	switch {
	case c.endpoint.SupportsAckedWrite:
		return transport.WriteWithResponse, nil
	case c.endpoint.SupportsUnackedWrite:
		return transport.WriteWithoutResponse, nil
	default:
		return 0, ErrNoWriteCapability
	}
}

// Send writes code as a single byte. Acked writes are preferred; an acked
// write rejected as unsupported is retried once unacked. A successful Water
// raises one HydrationReminder.
func (c *Channel) Send(ctx context.Context, code Code) error {
	if !code.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCode, uint8(code))
	}
	mode, err := c.Mode()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	latest := seq == c.seq
	c.mu.Unlock()
	if !latest {
		return fmt.Errorf("%s: %w", code, ErrSuperseded)
	}

	err = c.write(ctx, code, mode, false)
	if err != nil && mode == transport.WriteWithResponse && errors.Is(err, transport.ErrNotSupported) {
		c.logger.Debug("acked write rejected, retrying unacked", "command", code.String())
		err = c.write(ctx, code, transport.WriteWithoutResponse, true)
	}
	if err != nil {
		c.protocol.Log(plog.Event{
			Direction: plog.DirectionLocal,
			Layer:     plog.LayerCommand,
			Category:  plog.CategoryError,
			Error: &plog.ErrorEventData{
				Layer:   plog.LayerCommand,
				Message: err.Error(),
				Kind:    "write failed",
				Context: "send " + code.String(),
			},
		})
		return fmt.Errorf("write %s: %w", code, err)
	}

	c.mu.Lock()
	c.last = code
	c.hasLast = true
	c.mu.Unlock()

	if code == Water {
		notify.Safe(c.sink, notify.HydrationReminder, HydrationMessage)
	}
	return nil
}

func (c *Channel) write(ctx context.Context, code Code, mode transport.WriteMode, fallback bool) error {
	start := time.Now()
	err := c.endpoint.Characteristic.Write(ctx, code.Encode(), mode)
	elapsed := time.Since(start)

	c.logger.Debug("command write",
		"command", code.String(),
		"mode", mode.String(),
		"fallback", fallback,
		"elapsed", elapsed,
		"error", err)
	if err != nil {
		return err
	}

	c.protocol.Log(plog.Event{
		Direction: plog.DirectionOut,
		Layer:     plog.LayerCommand,
		Category:  plog.CategoryCommand,
		Write: &plog.WriteEvent{
			Characteristic: c.endpoint.UUID(),
			Data:           code.Encode(),
			Acked:          mode == transport.WriteWithResponse,
			Command:        code.String(),
			Fallback:       fallback,
			Duration:       &elapsed,
		},
	})
	return nil
}
