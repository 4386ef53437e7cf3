//go:build linux

package hci

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/paypal/gatt"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// DefaultScanTimeout bounds RequestDevice.
const DefaultScanTimeout = 20 * time.Second

// central is the part of gatt.Device the provider drives.
type central interface {
	scan()
	stopScanning()
	connect(p peripheral)
	cancelConnection(p peripheral)
}

// peripheral is the part of gatt.Peripheral a session uses.
type peripheral interface {
	ID() string
	Name() string
	DiscoverServices(s []gatt.UUID) ([]*gatt.Service, error)
	DiscoverCharacteristics(c []gatt.UUID, s *gatt.Service) ([]*gatt.Characteristic, error)
	DiscoverDescriptors(d []gatt.UUID, c *gatt.Characteristic) ([]*gatt.Descriptor, error)
	WriteCharacteristic(c *gatt.Characteristic, b []byte, noRsp bool) error
	SetNotifyValue(c *gatt.Characteristic, f func(*gatt.Characteristic, []byte, error)) error
}

type gattCentral struct {
	d gatt.Device
}

func (c gattCentral) scan()         { c.d.Scan([]gatt.UUID{}, false) }
func (c gattCentral) stopScanning() { c.d.StopScanning() }

func (c gattCentral) connect(p peripheral) {
	if gp, ok := p.(gatt.Peripheral); ok {
		c.d.Connect(gp)
	}
}

func (c gattCentral) cancelConnection(p peripheral) {
	if gp, ok := p.(gatt.Peripheral); ok {
		c.d.CancelConnection(gp)
	}
}

// Provider is a transport.Provider on a raw HCI device.
type Provider struct {
	central     central
	namePrefix  string
	address     string
	serviceUUID string
	scanTimeout time.Duration
	deviceID    int
	logger      *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	mu          sync.Mutex
	state       gatt.State
	found       chan transport.Device
	peripherals map[string]peripheral
	pending     map[string]*pendingConn
	sessions    map[string]*Session
}

// pendingConn is a connect in flight. Its session is registered in the
// same critical section that consumes it, so a disconnect right after the
// connect always finds the session.
type pendingConn struct {
	session *Session
	result  chan error
}

var _ transport.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithDeviceID selects the HCI device index; -1 picks the first usable one.
func WithDeviceID(id int) Option {
	return func(p *Provider) { p.deviceID = id }
}

// WithNamePrefix matches peripherals whose local name starts with prefix.
func WithNamePrefix(prefix string) Option {
	return func(p *Provider) { p.namePrefix = prefix }
}

// WithAddress matches only the peripheral with this ID (its MAC address).
func WithAddress(addr string) Option {
	return func(p *Provider) { p.address = strings.ToUpper(addr) }
}

// WithServiceUUID matches peripherals advertising the service.
func WithServiceUUID(uuid string) Option {
	return func(p *Provider) { p.serviceUUID = transport.NormalizeUUID(uuid) }
}

// WithScanTimeout bounds device selection.
func WithScanTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.scanTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func newProvider(opts ...Option) *Provider {
	p := &Provider{
		scanTimeout: DefaultScanTimeout,
		deviceID:    -1,
		logger:      slog.Default(),
		ready:       make(chan struct{}),
		peripherals: make(map[string]peripheral),
		pending:     make(map[string]*pendingConn),
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// New opens the HCI device and starts its state machine.
// Returns an error wrapping transport.ErrUnavailable if the device cannot be opened.
func New(opts ...Option) (*Provider, error) {
	p := newProvider(opts...)

	var gopts []gatt.Option
	if p.deviceID >= 0 {
		gopts = append(gopts, gatt.LnxDeviceID(p.deviceID, false))
	}
	d, err := gatt.NewDevice(gopts...)
	if err != nil {
		return nil, fmt.Errorf("open hci device: %w: %w", transport.ErrUnavailable, err)
	}
	p.central = gattCentral{d: d}

	d.Handle(
		gatt.PeripheralDiscovered(func(gp gatt.Peripheral, a *gatt.Advertisement, rssi int) {
			name := gp.Name()
			var services []string
			if a != nil {
				if a.LocalName != "" {
					name = a.LocalName
				}
				for _, u := range a.Services {
					services = append(services, canonicalUUID(u))
				}
			}
			p.discovered(gp, name, services)
		}),
		gatt.PeripheralConnected(func(gp gatt.Peripheral, err error) {
			p.connected(gp.ID(), err)
		}),
		gatt.PeripheralDisconnected(func(gp gatt.Peripheral, err error) {
			p.disconnected(gp.ID(), err)
		}),
	)
	if err := d.Init(func(_ gatt.Device, s gatt.State) { p.stateChanged(s) }); err != nil {
		return nil, fmt.Errorf("init hci device: %w: %w", transport.ErrUnavailable, err)
	}
	return p, nil
}

func (p *Provider) stateChanged(s gatt.State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.logger.Debug("hci state", "state", s.String())
	p.readyOnce.Do(func() { close(p.ready) })
}

// checkState maps the adapter state onto transport errors.
func (p *Provider) checkState(ctx context.Context) error {
	select {
	case <-p.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	s := p.state
	p.mu.Unlock()

	switch s {
	case gatt.StatePoweredOn:
		return nil
	case gatt.StateUnauthorized:
		return fmt.Errorf("hci %s: %w", s, transport.ErrPermissionDenied)
	default:
		return fmt.Errorf("hci %s: %w", s, transport.ErrUnavailable)
	}
}

// RequestDevice scans until a matching peripheral advertises.
func (p *Provider) RequestDevice(ctx context.Context) (transport.Device, error) {
	if err := p.checkState(ctx); err != nil {
		return transport.Device{}, err
	}

	found := make(chan transport.Device, 1)
	p.mu.Lock()
	if p.found != nil {
		p.mu.Unlock()
		return transport.Device{}, fmt.Errorf("scan already running: %w", transport.ErrCancelled)
	}
	p.found = found
	p.mu.Unlock()

	defer func() {
		p.central.stopScanning()
		p.mu.Lock()
		p.found = nil
		p.mu.Unlock()
	}()
	p.central.scan()

	timer := time.NewTimer(p.scanTimeout)
	defer timer.Stop()

	select {
	case dev := <-found:
		return dev, nil
	case <-timer.C:
		return transport.Device{}, fmt.Errorf("scan: %w", transport.ErrNoDevice)
	case <-ctx.Done():
		return transport.Device{}, ctx.Err()
	}
}

func (p *Provider) matches(id, name string, services []string) bool {
	if p.address != "" {
		return strings.EqualFold(id, p.address)
	}
	if p.namePrefix == "" && p.serviceUUID == "" {
		return true
	}
	if p.namePrefix != "" && strings.HasPrefix(name, p.namePrefix) {
		return true
	}
	for _, u := range services {
		if u == p.serviceUUID {
			return true
		}
	}
	return false
}

func (p *Provider) discovered(per peripheral, name string, services []string) {
	if !p.matches(per.ID(), name, services) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.peripherals[per.ID()] = per
	if p.found == nil {
		return
	}
	dev := transport.Device{ID: per.ID(), Name: name, Address: per.ID()}
	select {
	case p.found <- dev:
		p.logger.Info("device found", "name", name, "id", per.ID())
	default:
	}
}

func (p *Provider) connected(id string, err error) {
	p.mu.Lock()
	pc, ok := p.pending[id]
	delete(p.pending, id)
	if ok && err == nil {
		p.sessions[id] = pc.session
	}
	p.mu.Unlock()
	if ok {
		pc.result <- err
	}
}

func (p *Provider) disconnected(id string, err error) {
	p.mu.Lock()
	s := p.sessions[id]
	delete(p.sessions, id)
	pc, pending := p.pending[id]
	delete(p.pending, id)
	p.mu.Unlock()

	if pending {
		if err == nil {
			err = transport.ErrClosed
		}
		pc.result <- err
	}
	if s != nil {
		s.linkLost(err)
	}
}

// Open connects to a peripheral previously returned by RequestDevice.
func (p *Provider) Open(ctx context.Context, dev transport.Device) (transport.Session, error) {
	if err := p.checkState(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	per, ok := p.peripherals[dev.ID]
	var pc *pendingConn
	if ok {
		pc = &pendingConn{session: newSession(p, dev, per), result: make(chan error, 1)}
		p.pending[dev.ID] = pc
	}
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("peripheral %s not discovered: %w", dev.ID, transport.ErrNotFound)
	}

	p.central.connect(per)

	select {
	case err := <-pc.result:
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", dev.ID, err)
		}
	case <-ctx.Done():
		p.mu.Lock()
		if p.pending[dev.ID] == pc {
			delete(p.pending, dev.ID)
		}
		if p.sessions[dev.ID] == pc.session {
			delete(p.sessions, dev.ID)
		}
		p.mu.Unlock()
		p.central.cancelConnection(per)
		return nil, ctx.Err()
	}

	p.logger.Info("session open", "device", dev.DisplayName())
	return pc.session, nil
}

func (p *Provider) release(s *Session) {
	p.mu.Lock()
	if p.sessions[s.device.ID] == s {
		delete(p.sessions, s.device.ID)
	}
	p.mu.Unlock()
	p.central.cancelConnection(s.per)
}

// Close cancels every open connection.
func (p *Provider) Close() error {
	p.mu.Lock()
	sessions := make([]*Session, 0, len(p.sessions))
	for _, s := range p.sessions {
		sessions = append(sessions, s)
	}
	p.mu.Unlock()
	for _, s := range sessions {
		_ = s.Close()
	}
	return nil
}
