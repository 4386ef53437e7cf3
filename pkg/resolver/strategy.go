package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Strategy is one way of finding the command endpoint.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Find returns the endpoint or an error. Errors wrapping ErrNoEndpoint
	// mean the session has nothing this strategy accepts.
	Find(ctx context.Context, sess transport.Session) (*Endpoint, error)
}

// KnownEndpoint looks up a fixed service and characteristic by UUID.
// The characteristic is accepted as found, whatever flags it advertises.
type KnownEndpoint struct {
	Service        string
	Characteristic string
}

// Name implements Strategy.
func (KnownEndpoint) Name() string {
	return "known-endpoint"
}

// Find implements Strategy.
func (k KnownEndpoint) Find(ctx context.Context, sess transport.Session) (*Endpoint, error) {
	svc, err := sess.Service(ctx, k.Service)
	if err != nil {
		return nil, notFound(fmt.Sprintf("service %s", k.Service), err)
	}
	c, err := svc.Characteristic(ctx, k.Characteristic)
	if err != nil {
		return nil, notFound(fmt.Sprintf("characteristic %s", k.Characteristic), err)
	}
	return NewEndpoint(svc.UUID(), c, k.Name()), nil
}

// FirstWritableEnumerated walks every service and characteristic in
// platform order and picks the first that advertises either write mode.
type FirstWritableEnumerated struct{}

// Name implements Strategy.
func (FirstWritableEnumerated) Name() string {
	return "first-writable"
}

// Find implements Strategy.
func (f FirstWritableEnumerated) Find(ctx context.Context, sess transport.Session) (*Endpoint, error) {
	services, err := sess.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate services: %w", err)
	}

	var skipped error
	for _, svc := range services {
		chars, err := svc.Characteristics(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// One unreadable service does not end the search.
			skipped = errors.Join(skipped, fmt.Errorf("service %s: %w", svc.UUID(), err))
			continue
		}
		for _, c := range chars {
			if c.Properties().Writable() {
				return NewEndpoint(svc.UUID(), c, f.Name()), nil
			}
		}
	}

	if skipped != nil {
		return nil, fmt.Errorf("%w after %d services: %w", ErrNoEndpoint, len(services), skipped)
	}
	return nil, fmt.Errorf("%w after %d services", ErrNoEndpoint, len(services))
}

// DefaultStrategies returns the NutriGlow lookup order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		KnownEndpoint{Service: NutriGlowServiceUUID, Characteristic: NutriGlowCommandUUID},
		FirstWritableEnumerated{},
	}
}

func notFound(what string, err error) error {
	if errors.Is(err, transport.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrNoEndpoint, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
