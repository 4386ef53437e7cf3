package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Session is a simulated transport.Session.
type Session struct {
	provider *Provider
	id       int
	device   transport.Device
	services []*service

	mu       sync.Mutex
	closed   bool
	lost     chan struct{}
	lostOnce sync.Once
}

var _ transport.Session = (*Session)(nil)

func newSession(p *Provider, id int, dev transport.Device, layout []ServiceLayout) *Session {
	s := &Session{
		provider: p,
		id:       id,
		device:   dev,
		lost:     make(chan struct{}),
	}
	for _, sl := range layout {
		svc := &service{session: s, uuid: transport.NormalizeUUID(sl.UUID)}
		for _, cl := range sl.Characteristics {
			svc.chars = append(svc.chars, &characteristic{
				service: svc,
				uuid:    transport.NormalizeUUID(cl.UUID),
				props:   cl.Properties,
			})
		}
		s.services = append(s.services, svc)
	}
	return s
}

// ID returns the session sequence number, starting at 1.
func (s *Session) ID() int {
	return s.id
}

// Device implements transport.Session.
func (s *Session) Device() transport.Device {
	return s.device
}

// Service implements transport.Session.
func (s *Session) Service(ctx context.Context, uuid string) (transport.Service, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	for _, svc := range s.services {
		if transport.SameUUID(svc.uuid, uuid) {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("service %s: %w", uuid, transport.ErrNotFound)
}

// Services implements transport.Session.
func (s *Session) Services(ctx context.Context) ([]transport.Service, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]transport.Service, len(s.services))
	for i, svc := range s.services {
		out[i] = svc
	}
	return out, nil
}

// LinkLost implements transport.Session.
func (s *Session) LinkLost() <-chan struct{} {
	return s.lost
}

// Close implements transport.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, svc := range s.services {
		for _, c := range svc.chars {
			c.clearSubscriber()
		}
	}
	return nil
}

// Closed reports whether the session was closed or dropped.
func (s *Session) Closed() bool {
	return s.isClosed()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.isClosed() {
		return transport.ErrClosed
	}
	return nil
}

func (s *Session) drop() {
	s.mu.Lock()
	wasClosed := s.closed
	s.closed = true
	s.mu.Unlock()
	if wasClosed {
		return
	}
	s.lostOnce.Do(func() { close(s.lost) })
}

func (s *Session) notify(charUUID string, data []byte) int {
	if s.isClosed() {
		return 0
	}
	n := 0
	for _, svc := range s.services {
		for _, c := range svc.chars {
			if !transport.SameUUID(c.uuid, charUUID) {
				continue
			}
			if fn := c.subscriber(); fn != nil {
				fn(append([]byte(nil), data...))
				n++
			}
		}
	}
	return n
}

type service struct {
	session *Session
	uuid    string
	chars   []*characteristic
}

func (svc *service) UUID() string {
	return svc.uuid
}

func (svc *service) Characteristic(ctx context.Context, uuid string) (transport.Characteristic, error) {
	if err := svc.session.check(ctx); err != nil {
		return nil, err
	}
	for _, c := range svc.chars {
		if transport.SameUUID(c.uuid, uuid) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("characteristic %s: %w", uuid, transport.ErrNotFound)
}

func (svc *service) Characteristics(ctx context.Context) ([]transport.Characteristic, error) {
	if err := svc.session.check(ctx); err != nil {
		return nil, err
	}
	out := make([]transport.Characteristic, len(svc.chars))
	for i, c := range svc.chars {
		out[i] = c
	}
	return out, nil
}

type characteristic struct {
	service *service
	uuid    string
	props   transport.Properties

	mu sync.Mutex
	fn func([]byte)
}

func (c *characteristic) UUID() string {
	return c.uuid
}

func (c *characteristic) Properties() transport.Properties {
	return c.props
}

func (c *characteristic) Write(ctx context.Context, data []byte, mode transport.WriteMode) error {
	s := c.service.session
	if err := s.check(ctx); err != nil {
		return err
	}
	switch mode {
	case transport.WriteWithResponse:
		if !c.props.Has(transport.PropWrite) {
			return fmt.Errorf("write %s: %w", c.uuid, transport.ErrNotSupported)
		}
	case transport.WriteWithoutResponse:
		if !c.props.Has(transport.PropWriteWithoutResponse) {
			return fmt.Errorf("write %s: %w", c.uuid, transport.ErrNotSupported)
		}
	default:
		return fmt.Errorf("write %s: mode %d: %w", c.uuid, mode, transport.ErrNotSupported)
	}
	return s.provider.recordWrite(Write{
		Session:        s.id,
		Characteristic: c.uuid,
		Data:           append([]byte(nil), data...),
		Mode:           mode,
	})
}

func (c *characteristic) Subscribe(ctx context.Context, fn func([]byte)) error {
	if err := c.service.session.check(ctx); err != nil {
		return err
	}
	if c.props&(transport.PropNotify|transport.PropIndicate) == 0 {
		return fmt.Errorf("subscribe %s: %w", c.uuid, transport.ErrNotSupported)
	}
	if err := c.service.session.provider.subscribeError(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
	return nil
}

func (c *characteristic) subscriber() func([]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn
}

func (c *characteristic) clearSubscriber() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = nil
}
