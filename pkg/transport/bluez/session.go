package bluez

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Session is an open BlueZ link to one device.
type Session struct {
	provider *Provider
	device   transport.Device
	path     dbus.ObjectPath

	lost     chan struct{}
	lostOnce sync.Once

	mu       sync.Mutex
	closed   bool
	stops    []func()
	notifies []dbus.ObjectPath
	done     chan struct{}
}

var _ transport.Session = (*Session)(nil)

func newSession(p *Provider, dev transport.Device, path dbus.ObjectPath, changes <-chan map[string]dbus.Variant, stop func()) *Session {
	s := &Session{
		provider: p,
		device:   dev,
		path:     path,
		lost:     make(chan struct{}),
		stops:    []func(){stop},
		done:     make(chan struct{}),
	}
	go s.monitor(changes)
	return s
}

// monitor closes the lost channel when BlueZ reports the device disconnected.
func (s *Session) monitor(changes <-chan map[string]dbus.Variant) {
	for {
		select {
		case <-s.done:
			return
		case props := <-changes:
			v, ok := props["Connected"]
			if !ok {
				continue
			}
			if connected, _ := v.Value().(bool); connected {
				continue
			}
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			s.provider.logger.Warn("link lost", "device", s.device.DisplayName())
			s.lostOnce.Do(func() { close(s.lost) })
			return
		}
	}
}

// Device returns the connected device.
func (s *Session) Device() transport.Device {
	return s.device
}

// LinkLost is closed when the device disconnects without Close.
func (s *Session) LinkLost() <-chan struct{} {
	return s.lost
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Services enumerates the device's GATT services in handle order.
func (s *Session) Services(ctx context.Context) ([]transport.Service, error) {
	if s.isClosed() {
		return nil, transport.ErrClosed
	}
	objects, err := s.provider.bus.managedObjects(ctx)
	if err != nil {
		return nil, translate("list services", err)
	}

	prefix := string(s.path) + "/service"
	var services []*Service
	for path, ifaces := range objects {
		props, ok := ifaces[gattServiceInterface]
		if !ok || !strings.HasPrefix(string(path), prefix) {
			continue
		}
		services = append(services, &Service{
			session: s,
			path:    path,
			uuid:    transport.NormalizeUUID(stringProp(props, "UUID")),
		})
	}
	// BlueZ names objects by zero-padded handle, so path order is handle order.
	sort.Slice(services, func(i, j int) bool { return services[i].path < services[j].path })

	out := make([]transport.Service, len(services))
	for i, svc := range services {
		out[i] = svc
	}
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

// Close stops notifications and disconnects the device.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stops := s.stops
	notifies := s.notifies
	s.stops = nil
	s.notifies = nil
	s.mu.Unlock()

	close(s.done)
	for _, stop := range stops {
		stop()
	}

	bus := s.provider.bus
	for _, path := range notifies {
		_ = bus.call(context.Background(), path, gattCharInterface+".StopNotify")
	}
	if err := bus.call(context.Background(), s.path, deviceInterface+".Disconnect"); err != nil &&
		errorName(err) != errNotConnected {
		return translate("disconnect", err)
	}
	return nil
}

// Service is a GATT service exported by BlueZ.
type Service struct {
	session *Session
	path    dbus.ObjectPath
	uuid    string
}

var _ transport.Service = (*Service)(nil)

// UUID returns the service UUID.
func (svc *Service) UUID() string {
	return svc.uuid
}

// Characteristics enumerates the service's characteristics in handle order.
func (svc *Service) Characteristics(ctx context.Context) ([]transport.Characteristic, error) {
	if svc.session.isClosed() {
		return nil, transport.ErrClosed
	}
	objects, err := svc.session.provider.bus.managedObjects(ctx)
	if err != nil {
		return nil, translate("list characteristics", err)
	}

	prefix := string(svc.path) + "/char"
	var chars []*Characteristic
	for path, ifaces := range objects {
		props, ok := ifaces[gattCharInterface]
		if !ok || !strings.HasPrefix(string(path), prefix) {
			continue
		}
		chars = append(chars, &Characteristic{
			session: svc.session,
			path:    path,
			uuid:    transport.NormalizeUUID(stringProp(props, "UUID")),
			props:   transport.ParseFlags(stringsProp(props, "Flags")),
		})
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i].path < chars[j].path })

	out := make([]transport.Characteristic, len(chars))
	for i, c := range chars {
		out[i] = c
	}
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

// Characteristic is a GATT characteristic exported by BlueZ.
type Characteristic struct {
	session *Session
	path    dbus.ObjectPath
	uuid    string
	props   transport.Properties
}

var _ transport.Characteristic = (*Characteristic)(nil)

// UUID returns the characteristic UUID.
func (c *Characteristic) UUID() string {
	return c.uuid
}

// Properties returns the flags BlueZ reports for the characteristic.
func (c *Characteristic) Properties() transport.Properties {
	return c.props
}

// Write calls WriteValue with the "type" option set from mode.
func (c *Characteristic) Write(ctx context.Context, data []byte, mode transport.WriteMode) error {
	if c.session.isClosed() {
		return transport.ErrClosed
	}
	kind := "request"
	if mode == transport.WriteWithoutResponse {
		kind = "command"
	}
	options := map[string]any{"type": kind}
	err := c.session.provider.bus.call(ctx, c.path, gattCharInterface+".WriteValue", data, options)
	return translate("write "+mode.String(), err)
}

// Subscribe starts notifications and delivers each Value change to fn.
func (c *Characteristic) Subscribe(ctx context.Context, fn func([]byte)) error {
	if c.session.isClosed() {
		return transport.ErrClosed
	}
	bus := c.session.provider.bus
	changes, stop, err := bus.watch(c.path)
	if err != nil {
		return translate("watch characteristic", err)
	}
	if err := bus.call(ctx, c.path, gattCharInterface+".StartNotify"); err != nil {
		stop()
		return translate("start notify", err)
	}

	s := c.session
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stop()
		return transport.ErrClosed
	}
	s.stops = append(s.stops, stop)
	s.notifies = append(s.notifies, c.path)
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-s.done:
				return
			case props := <-changes:
				v, ok := props["Value"]
				if !ok {
					continue
				}
				if value, ok := v.Value().([]byte); ok {
					fn(value)
				}
			}
		}
	}()
	return nil
}
