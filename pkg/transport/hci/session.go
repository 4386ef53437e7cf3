//go:build linux

package hci

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/paypal/gatt"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

const baseUUIDSuffix = "-0000-1000-8000-00805f9b34fb"

// canonicalUUID renders a gatt UUID in dashed 128-bit form.
func canonicalUUID(u gatt.UUID) string {
	s := strings.ToLower(strings.ReplaceAll(u.String(), "-", ""))
	switch len(s) {
	case 4:
		return "0000" + s + baseUUIDSuffix
	case 8:
		return s + baseUUIDSuffix
	case 32:
		return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:]
	default:
		return s
	}
}

// Session is a connected peripheral.
type Session struct {
	provider *Provider
	device   transport.Device
	per      peripheral

	lost     chan struct{}
	lostOnce sync.Once

	// proc holds one token per running gatt procedure. A procedure can
	// block forever once the link drops, so mu is never held across one.
	proc chan struct{}
	done chan struct{}

	mu       sync.Mutex
	closed   bool
	services []transport.Service
}

var _ transport.Session = (*Session)(nil)

func newSession(p *Provider, dev transport.Device, per peripheral) *Session {
	return &Session{
		provider: p,
		device:   dev,
		per:      per,
		lost:     make(chan struct{}),
		proc:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// markClosed reports whether this call closed the session.
func (s *Session) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.done)
	return true
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// begin takes the procedure slot. It fails once the session is closed or
// ctx is done; on success the caller must call end.
func (s *Session) begin(ctx context.Context) error {
	select {
	case s.proc <- struct{}{}:
	case <-s.done:
		return transport.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.isClosed() {
		s.end()
		return transport.ErrClosed
	}
	return nil
}

func (s *Session) end() {
	<-s.proc
}

func (s *Session) linkLost(err error) {
	if !s.markClosed() {
		return
	}
	s.provider.logger.Warn("link lost", "device", s.device.DisplayName(), "error", err)
	s.lostOnce.Do(func() { close(s.lost) })
}

// Device returns the connected device.
func (s *Session) Device() transport.Device {
	return s.device
}

// LinkLost is closed when the peripheral disconnects without Close.
func (s *Session) LinkLost() <-chan struct{} {
	return s.lost
}

// Services discovers the primary services once and caches them.
func (s *Session) Services(ctx context.Context) ([]transport.Service, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.end()

	s.mu.Lock()
	cached := s.services
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	ss, err := s.per.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("discover services: %w", err)
	}
	out := make([]transport.Service, len(ss))
	for i, gs := range ss {
		out[i] = &Service{session: s, svc: gs, uuid: canonicalUUID(gs.UUID())}
	}
	s.mu.Lock()
	s.services = out
	s.mu.Unlock()
	return out, nil
}

// Service returns the service with the given UUID.
func (s *Session) Service(ctx context.Context, uuid string) (transport.Service, error) {
	services, err := s.Services(ctx)
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		if transport.SameUUID(svc.UUID(), uuid) {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("service %s: %w", uuid, transport.ErrNotFound)
}

// Close cancels the connection without waiting for a running procedure.
func (s *Session) Close() error {
	if !s.markClosed() {
		return nil
	}
	s.provider.release(s)
	return nil
}

// Service is a discovered GATT service.
type Service struct {
	session *Session
	svc     *gatt.Service
	uuid    string

	// chars is guarded by the session's procedure slot.
	chars []transport.Characteristic
}

var _ transport.Service = (*Service)(nil)

// UUID returns the service UUID.
func (svc *Service) UUID() string {
	return svc.uuid
}

// Characteristics discovers the service's characteristics once and caches them.
func (svc *Service) Characteristics(ctx context.Context) ([]transport.Characteristic, error) {
	s := svc.session
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.end()
	if svc.chars != nil {
		return svc.chars, nil
	}

	cs, err := s.per.DiscoverCharacteristics(nil, svc.svc)
	if err != nil {
		return nil, fmt.Errorf("discover characteristics: %w", err)
	}
	out := make([]transport.Characteristic, len(cs))
	for i, gc := range cs {
		out[i] = &Characteristic{
			session: s,
			char:    gc,
			uuid:    canonicalUUID(gc.UUID()),
			props:   transport.Properties(gc.Properties()) & 0x3f,
		}
	}
	svc.chars = out
	return out, nil
}

// Characteristic returns the characteristic with the given UUID.
func (svc *Service) Characteristic(ctx context.Context, uuid string) (transport.Characteristic, error) {
	chars, err := svc.Characteristics(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range chars {
		if transport.SameUUID(c.UUID(), uuid) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("characteristic %s: %w", uuid, transport.ErrNotFound)
}

// Characteristic is a discovered GATT characteristic.
type Characteristic struct {
	session *Session
	char    *gatt.Characteristic
	uuid    string
	props   transport.Properties
}

var _ transport.Characteristic = (*Characteristic)(nil)

// UUID returns the characteristic UUID.
func (c *Characteristic) UUID() string {
	return c.uuid
}

// Properties returns the characteristic's property bits.
func (c *Characteristic) Properties() transport.Properties {
	return c.props
}

// Write issues an ATT write request or write command.
func (c *Characteristic) Write(ctx context.Context, data []byte, mode transport.WriteMode) error {
	s := c.session
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.end()
	if err := s.per.WriteCharacteristic(c.char, data, mode == transport.WriteWithoutResponse); err != nil {
		return fmt.Errorf("write %s: %w", mode, err)
	}
	return nil
}

// Subscribe discovers the client configuration descriptor and enables
// notifications.
func (c *Characteristic) Subscribe(ctx context.Context, fn func([]byte)) error {
	if !c.props.Has(transport.PropNotify) {
		return fmt.Errorf("notify %s: %w", c.uuid, transport.ErrNotSupported)
	}
	s := c.session
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.end()
	if _, err := s.per.DiscoverDescriptors(nil, c.char); err != nil {
		return fmt.Errorf("discover descriptors: %w", err)
	}
	return s.per.SetNotifyValue(c.char, func(_ *gatt.Characteristic, b []byte, err error) {
		if err != nil {
			s.provider.logger.Debug("notification error", "characteristic", c.uuid, "error", err)
			return
		}
		fn(b)
	})
}
