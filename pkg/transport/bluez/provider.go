// Package bluez implements the transport interfaces on top of BlueZ over the
// system D-Bus.
//
// Device selection runs an LE discovery on the configured adapter and picks
// the first device matching the configured address, name prefix or
// advertised service UUID. Sessions use org.bluez.Device1 for the link and
// org.bluez.GattCharacteristic1 for writes and notifications.
package bluez

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Defaults.
const (
	DefaultAdapter      = "hci0"
	DefaultScanTimeout  = 20 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Provider is a transport.Provider backed by BlueZ.
type Provider struct {
	bus          bus
	adapter      dbus.ObjectPath
	namePrefix   string
	address      string
	serviceUUID  string
	scanTimeout  time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

var _ transport.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithAdapter selects the adapter by name, e.g. "hci1".
func WithAdapter(name string) Option {
	return func(p *Provider) {
		if name != "" {
			p.adapter = dbus.ObjectPath("/org/bluez/" + name)
		}
	}
}

// WithNamePrefix matches devices whose advertised name starts with prefix.
func WithNamePrefix(prefix string) Option {
	return func(p *Provider) { p.namePrefix = prefix }
}

// WithAddress matches only the device with this Bluetooth address.
// It takes precedence over name and service matching.
func WithAddress(addr string) Option {
	return func(p *Provider) { p.address = strings.ToUpper(addr) }
}

// WithServiceUUID matches devices advertising the service and narrows the
// discovery filter to it.
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

// WithPollInterval sets how often discovery results and connection
// progress are polled.
func WithPollInterval(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// New connects to the system bus.
// Returns an error wrapping transport.ErrUnavailable if the bus is unreachable.
func New(opts ...Option) (*Provider, error) {
	b, err := newSystemBus()
	if err != nil {
		return nil, fmt.Errorf("system bus: %w: %w", transport.ErrUnavailable, err)
	}
	return newProvider(b, opts...), nil
}

func newProvider(b bus, opts ...Option) *Provider {
	p := &Provider{
		bus:          b,
		adapter:      dbus.ObjectPath("/org/bluez/" + DefaultAdapter),
		scanTimeout:  DefaultScanTimeout,
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close releases the bus connection.
func (p *Provider) Close() error {
	return p.bus.close()
}

// RequestDevice scans for a matching accessory.
// Returns transport.ErrUnavailable if the adapter is missing or powered off
// and transport.ErrNoDevice if nothing matched within the scan timeout.
func (p *Provider) RequestDevice(ctx context.Context) (transport.Device, error) {
	powered, err := p.bus.property(ctx, p.adapter, adapterInterface, "Powered")
	if err != nil {
		if errorName(err) == errUnknownObject || errorName(err) == errUnknownMethod {
			return transport.Device{}, fmt.Errorf("adapter %s: %w: %w", p.adapter, transport.ErrUnavailable, err)
		}
		return transport.Device{}, translate("adapter", err)
	}
	if on, _ := powered.Value().(bool); !on {
		return transport.Device{}, fmt.Errorf("adapter %s powered off: %w", p.adapter, transport.ErrUnavailable)
	}

	// Devices BlueZ already knows about need no discovery.
	if dev, ok, err := p.findDevice(ctx); err != nil {
		return transport.Device{}, err
	} else if ok {
		return dev, nil
	}

	filter := map[string]any{
		"Transport":     "le",
		"DuplicateData": false,
	}
	if p.serviceUUID != "" {
		filter["UUIDs"] = []string{p.serviceUUID}
	}
	if err := p.bus.call(ctx, p.adapter, adapterInterface+".SetDiscoveryFilter", filter); err != nil {
		p.logger.Debug("discovery filter rejected", "adapter", p.adapter, "error", err)
	}
	if err := p.bus.call(ctx, p.adapter, adapterInterface+".StartDiscovery"); err != nil && errorName(err) != errInProgress {
		return transport.Device{}, translate("start discovery", err)
	}
	p.logger.Debug("discovery started", "adapter", p.adapter)
	defer func() {
		if err := p.bus.call(context.Background(), p.adapter, adapterInterface+".StopDiscovery"); err != nil {
			p.logger.Debug("stop discovery failed", "error", err)
		}
	}()

	scanCtx, cancel := context.WithTimeout(ctx, p.scanTimeout)
	defer cancel()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-scanCtx.Done():
			if ctx.Err() != nil {
				return transport.Device{}, ctx.Err()
			}
			return transport.Device{}, fmt.Errorf("scan for %s: %w", p.describeTarget(), transport.ErrNoDevice)
		case <-ticker.C:
			dev, ok, err := p.findDevice(scanCtx)
			if err != nil {
				if scanCtx.Err() != nil {
					continue
				}
				return transport.Device{}, err
			}
			if ok {
				return dev, nil
			}
		}
	}
}

func (p *Provider) describeTarget() string {
	switch {
	case p.address != "":
		return p.address
	case p.namePrefix != "" && p.serviceUUID != "":
		return fmt.Sprintf("%q or service %s", p.namePrefix+"*", p.serviceUUID)
	case p.namePrefix != "":
		return fmt.Sprintf("%q", p.namePrefix+"*")
	case p.serviceUUID != "":
		return "service " + p.serviceUUID
	default:
		return "any device"
	}
}

// findDevice returns the first matching device under the adapter, ordered
// by object path.
func (p *Provider) findDevice(ctx context.Context) (transport.Device, bool, error) {
	objects, err := p.bus.managedObjects(ctx)
	if err != nil {
		return transport.Device{}, false, translate("list objects", err)
	}

	prefix := string(p.adapter) + "/dev_"
	paths := make([]dbus.ObjectPath, 0, len(objects))
	for path, ifaces := range objects {
		if _, ok := ifaces[deviceInterface]; ok && strings.HasPrefix(string(path), prefix) {
			paths = append(paths, path)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	for _, path := range paths {
		props := objects[path][deviceInterface]
		dev := transport.Device{
			ID:      string(path),
			Name:    stringProp(props, "Name"),
			Address: stringProp(props, "Address"),
		}
		if dev.Name == "" {
			dev.Name = stringProp(props, "Alias")
		}
		if p.matches(dev, stringsProp(props, "UUIDs")) {
			p.logger.Info("device found", "name", dev.Name, "address", dev.Address)
			return dev, true, nil
		}
	}
	return transport.Device{}, false, nil
}

func (p *Provider) matches(dev transport.Device, uuids []string) bool {
	if p.address != "" {
		return strings.EqualFold(dev.Address, p.address)
	}
	if p.namePrefix == "" && p.serviceUUID == "" {
		return true
	}
	if p.namePrefix != "" && strings.HasPrefix(dev.Name, p.namePrefix) {
		return true
	}
	if p.serviceUUID != "" {
		for _, u := range uuids {
			if transport.SameUUID(u, p.serviceUUID) {
				return true
			}
		}
	}
	return false
}

// Open connects to dev and waits for GATT service resolution.
func (p *Provider) Open(ctx context.Context, dev transport.Device) (transport.Session, error) {
	path := dbus.ObjectPath(dev.ID)
	if !path.IsValid() {
		return nil, fmt.Errorf("device %q: %w", dev.ID, transport.ErrNotFound)
	}

	// Watch before connecting so a drop during resolution is not missed.
	changes, stop, err := p.bus.watch(path)
	if err != nil {
		return nil, translate("watch device", err)
	}

	if err := p.bus.call(ctx, path, deviceInterface+".Connect"); err != nil {
		switch errorName(err) {
		case errInProgress, errAlreadyConn:
		default:
			stop()
			return nil, translate("connect", err)
		}
	}

	if err := p.waitResolved(ctx, path); err != nil {
		stop()
		_ = p.bus.call(context.Background(), path, deviceInterface+".Disconnect")
		return nil, err
	}

	s := newSession(p, dev, path, changes, stop)
	p.logger.Info("session open", "device", dev.DisplayName())
	return s, nil
}

func (p *Provider) waitResolved(ctx context.Context, path dbus.ObjectPath) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		v, err := p.bus.property(ctx, path, deviceInterface, "ServicesResolved")
		if err == nil {
			if resolved, _ := v.Value().(bool); resolved {
				return nil
			}
		} else if ctx.Err() == nil {
			return translate("services resolved", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func stringProp(props map[string]dbus.Variant, name string) string {
	if v, ok := props[name]; ok {
		s, _ := v.Value().(string)
		return s
	}
	return ""
}

func stringsProp(props map[string]dbus.Variant, name string) []string {
	if v, ok := props[name]; ok {
		s, _ := v.Value().([]string)
		return s
	}
	return nil
}
