package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Observer receives notification values from a subscribed endpoint.
// It is called on a transport goroutine.
type Observer func(ep *Endpoint, data []byte)

// Resolver runs strategies in order until one yields an endpoint.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStrategies replaces the default strategy order.
func WithStrategies(strategies ...Strategy) Option {
	return func(r *Resolver) { r.strategies = strategies }
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver using DefaultStrategies unless overridden.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		strategies: DefaultStrategies(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategies returns the configured strategy order.
func (r *Resolver) Strategies() []Strategy {
	return append([]Strategy(nil), r.strategies...)
}

// Resolve finds the command endpoint on sess. When the endpoint supports
// notifications it is subscribed and values are passed to observe, which may
// be nil. A failed subscription is logged and does not fail resolution.
func (r *Resolver) Resolve(ctx context.Context, sess transport.Session, observe Observer) (*Endpoint, error) {
	var lastErr error
	for _, s := range r.strategies {
		ep, err := s.Find(ctx, sess)
		if err == nil {
			r.logger.Debug("command endpoint resolved",
				"strategy", s.Name(),
				"service", ep.ServiceUUID,
				"characteristic", ep.UUID(),
				"acked", ep.SupportsAckedWrite,
				"unacked", ep.SupportsUnackedWrite,
				"notify", ep.SupportsNotify)
			r.subscribe(ctx, ep, observe)
			return ep, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Debug("endpoint strategy failed", "strategy", s.Name(), "error", err)
		lastErr = err
	}

	if lastErr == nil {
		return nil, ErrNoEndpoint
	}
	if errors.Is(lastErr, ErrNoEndpoint) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("resolve endpoint: %w", lastErr)
}

func (r *Resolver) subscribe(ctx context.Context, ep *Endpoint, observe Observer) {
	if !ep.SupportsNotify {
		return
	}
	err := ep.Characteristic.Subscribe(ctx, func(data []byte) {
		r.logger.Debug("endpoint notification", "characteristic", ep.UUID(), "size", len(data))
		if observe != nil {
			observe(ep, data)
		}
	})
	if err != nil {
		r.logger.Warn("subscribe to endpoint notifications failed", "characteristic", ep.UUID(), "error", err)
		return
	}
	ep.Subscribed = true
}
