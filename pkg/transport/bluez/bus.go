package bluez

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
)

// D-Bus names used by BlueZ.
const (
	serviceName = "org.bluez"

	adapterInterface        = "org.bluez.Adapter1"
	deviceInterface         = "org.bluez.Device1"
	gattServiceInterface    = "org.bluez.GattService1"
	gattCharInterface       = "org.bluez.GattCharacteristic1"
	propertiesInterface     = "org.freedesktop.DBus.Properties"
	objectManagerInterface  = "org.freedesktop.DBus.ObjectManager"
	propertiesChangedMember = "PropertiesChanged"
	propertiesChangedSignal = propertiesInterface + "." + propertiesChangedMember
)

// managedObjects is the GetManagedObjects reply: path -> interface -> property.
type managedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// bus is the subset of the system bus the provider needs.
type bus interface {
	// managedObjects returns every object BlueZ exports.
	managedObjects(ctx context.Context) (managedObjects, error)

	// call invokes method on the BlueZ object at path.
	call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) error

	// property reads iface.name from the object at path.
	property(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error)

	// watch delivers the changed properties of every PropertiesChanged
	// signal emitted by path. The returned func stops delivery.
	watch(path dbus.ObjectPath) (<-chan map[string]dbus.Variant, func(), error)

	close() error
}

// systemBus implements bus over a private system bus connection.
type systemBus struct {
	conn *dbus.Conn

	mu       sync.Mutex
	watchers map[dbus.ObjectPath][]*watcher
	signals  chan *dbus.Signal
	done     chan struct{}
}

type watcher struct {
	ch   chan map[string]dbus.Variant
	stop chan struct{}
}

func newSystemBus() (*systemBus, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, err
	}
	b := &systemBus{
		conn:     conn,
		watchers: make(map[dbus.ObjectPath][]*watcher),
		signals:  make(chan *dbus.Signal, 100),
		done:     make(chan struct{}),
	}
	conn.Signal(b.signals)
	go b.dispatch()
	return b, nil
}

func (b *systemBus) managedObjects(ctx context.Context) (managedObjects, error) {
	objects := make(managedObjects)
	obj := b.conn.Object(serviceName, "/")
	if err := obj.CallWithContext(ctx, objectManagerInterface+".GetManagedObjects", 0).Store(&objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func (b *systemBus) call(ctx context.Context, path dbus.ObjectPath, method string, args ...any) error {
	return b.conn.Object(serviceName, path).CallWithContext(ctx, method, 0, args...).Err
}

func (b *systemBus) property(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	err := b.conn.Object(serviceName, path).
		CallWithContext(ctx, propertiesInterface+".Get", 0, iface, name).
		Store(&v)
	return v, err
}

func (b *systemBus) matchOptions(path dbus.ObjectPath) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember(propertiesChangedMember),
	}
}

func (b *systemBus) watch(path dbus.ObjectPath) (<-chan map[string]dbus.Variant, func(), error) {
	if err := b.conn.AddMatchSignal(b.matchOptions(path)...); err != nil {
		return nil, nil, err
	}

	w := &watcher{
		ch:   make(chan map[string]dbus.Variant, 16),
		stop: make(chan struct{}),
	}
	b.mu.Lock()
	b.watchers[path] = append(b.watchers[path], w)
	b.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			list := b.watchers[path]
			for i, x := range list {
				if x == w {
					list = append(list[:i], list[i+1:]...)
					break
				}
			}
			if len(list) == 0 {
				delete(b.watchers, path)
			} else {
				b.watchers[path] = list
			}
			b.mu.Unlock()
			close(w.stop)
			_ = b.conn.RemoveMatchSignal(b.matchOptions(path)...)
		})
	}
	return w.ch, stop, nil
}

// dispatch routes PropertiesChanged signals to the watchers of their path.
// Body layout: interface name, changed properties, invalidated properties.
func (b *systemBus) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case sig, ok := <-b.signals:
			if !ok {
				return
			}
			if sig == nil || sig.Name != propertiesChangedSignal || len(sig.Body) < 2 {
				continue
			}
			changed, ok := sig.Body[1].(map[string]dbus.Variant)
			if !ok {
				continue
			}

			b.mu.Lock()
			list := append([]*watcher(nil), b.watchers[sig.Path]...)
			b.mu.Unlock()

			for _, w := range list {
				select {
				case w.ch <- changed:
				case <-w.stop:
				case <-b.done:
					return
				}
			}
		}
	}
}

func (b *systemBus) close() error {
	close(b.done)
	b.conn.RemoveSignal(b.signals)
	return b.conn.Close()
}
