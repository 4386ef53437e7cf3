// Package resolver locates the command endpoint on an open accessory session.
//
// Resolution runs an ordered list of strategies and takes the first that
// succeeds. The default order looks up the NutriGlow command service and
// characteristic by UUID, then falls back to the first writable
// characteristic found by walking every service in platform order.
//
// The fallback does not check that the chosen characteristic is really the
// accessory's command channel. Firmware is inconsistent about exposing the
// expected identifiers, and any writable characteristic is accepted.
package resolver

import (
	"errors"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Well-known NutriGlow GATT identifiers.
const (
	NutriGlowServiceUUID = "0000fff0-0000-1000-8000-00805f9b34fb"
	NutriGlowCommandUUID = "0000fff1-0000-1000-8000-00805f9b34fb"
)

// ErrNoEndpoint is returned when no strategy finds a usable characteristic.
var ErrNoEndpoint = errors.New("no usable command endpoint")

// Endpoint is a resolved command characteristic and its negotiated capabilities.
// It is only valid while the session it came from is open.
type Endpoint struct {
	// Characteristic is the characteristic commands are written to.
	Characteristic transport.Characteristic

	// ServiceUUID is the service the characteristic belongs to.
	ServiceUUID string

	SupportsAckedWrite   bool
	SupportsUnackedWrite bool
	SupportsNotify       bool

	// Subscribed is true once value-change notifications were enabled.
	Subscribed bool

	// Strategy names the strategy that found this endpoint.
	Strategy string
}

// NewEndpoint builds an Endpoint from the characteristic's advertised properties.
func NewEndpoint(serviceUUID string, c transport.Characteristic, strategy string) *Endpoint {
	props := c.Properties()
	return &Endpoint{
		Characteristic:       c,
		ServiceUUID:          transport.NormalizeUUID(serviceUUID),
		SupportsAckedWrite:   props.Has(transport.PropWrite),
		SupportsUnackedWrite: props.Has(transport.PropWriteWithoutResponse),
		SupportsNotify:       props&(transport.PropNotify|transport.PropIndicate) != 0,
		Strategy:             strategy,
	}
}

// UUID returns the characteristic UUID.
func (e *Endpoint) UUID() string {
	return transport.NormalizeUUID(e.Characteristic.UUID())
}

// Writable reports whether either write mode is advertised.
func (e *Endpoint) Writable() bool {
	return e.SupportsAckedWrite || e.SupportsUnackedWrite
}
