//go:build linux

package hci

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paypal/gatt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

type fakeCentral struct {
	mu       sync.Mutex
	scans    int
	stops    int
	connects []string
	cancels  []string
	onScan   func()
	onConn   func(id string)
}

func (c *fakeCentral) scan() {
	c.mu.Lock()
	c.scans++
	hook := c.onScan
	c.mu.Unlock()
	if hook != nil {
		go hook()
	}
}

func (c *fakeCentral) stopScanning() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
}

func (c *fakeCentral) connect(p peripheral) {
	c.mu.Lock()
	c.connects = append(c.connects, p.ID())
	hook := c.onConn
	c.mu.Unlock()
	if hook != nil {
		go hook(p.ID())
	}
}

func (c *fakeCentral) cancelConnection(p peripheral) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels = append(c.cancels, p.ID())
}

type fakePeripheral struct {
	id       string
	name     string
	services []*gatt.Service
	err      error

	// When hang is set, writes signal writing and wait for hang to close.
	writing chan struct{}
	hang    chan struct{}
}

func (p *fakePeripheral) ID() string   { return p.id }
func (p *fakePeripheral) Name() string { return p.name }

func (p *fakePeripheral) DiscoverServices([]gatt.UUID) ([]*gatt.Service, error) {
	return p.services, p.err
}

func (p *fakePeripheral) DiscoverCharacteristics([]gatt.UUID, *gatt.Service) ([]*gatt.Characteristic, error) {
	return nil, p.err
}

func (p *fakePeripheral) DiscoverDescriptors([]gatt.UUID, *gatt.Characteristic) ([]*gatt.Descriptor, error) {
	return nil, p.err
}

func (p *fakePeripheral) WriteCharacteristic(*gatt.Characteristic, []byte, bool) error {
	if p.hang != nil {
		p.writing <- struct{}{}
		<-p.hang
	}
	return p.err
}

func (p *fakePeripheral) SetNotifyValue(*gatt.Characteristic, func(*gatt.Characteristic, []byte, error)) error {
	return p.err
}

const glowID = "C0:FF:EE:00:11:22"

func testProvider(c *fakeCentral, opts ...Option) *Provider {
	opts = append([]Option{
		WithNamePrefix("NutriGlow"),
		WithScanTimeout(50 * time.Millisecond),
	}, opts...)
	p := newProvider(opts...)
	p.central = c
	p.stateChanged(gatt.StatePoweredOn)
	return p
}

func glowPeripheral() *fakePeripheral {
	return &fakePeripheral{
		id:   glowID,
		name: "NutriGlow-1A2B",
		services: []*gatt.Service{
			gatt.NewService(gatt.UUID16(0x180f)),
			gatt.NewService(gatt.UUID16(0xfff0)),
		},
	}
}

func connectedSession(t *testing.T) (*Provider, *fakeCentral, *Session) {
	t.Helper()
	return connectedSessionWith(t, glowPeripheral())
}

func connectedSessionWith(t *testing.T, per *fakePeripheral) (*Provider, *fakeCentral, *Session) {
	t.Helper()
	c := &fakeCentral{}
	p := testProvider(c)
	c.onScan = func() { p.discovered(per, per.name, nil) }
	c.onConn = func(id string) { p.connected(id, nil) }

	dev, err := p.RequestDevice(context.Background())
	require.NoError(t, err)
	sess, err := p.Open(context.Background(), dev)
	require.NoError(t, err)
	return p, c, sess.(*Session)
}

func TestCanonicalUUID(t *testing.T) {
	assert.Equal(t, "0000fff0-0000-1000-8000-00805f9b34fb", canonicalUUID(gatt.UUID16(0xfff0)))
	assert.Equal(t, "6e400001-b5a3-f393-e0a9-e50e24dcca9e",
		canonicalUUID(gatt.MustParseUUID("6E400001-B5A3-F393-E0A9-E50E24DCCA9E")))
}

func TestRequestDeviceState(t *testing.T) {
	tests := []struct {
		state gatt.State
		want  error
	}{
		{gatt.StatePoweredOff, transport.ErrUnavailable},
		{gatt.StateUnsupported, transport.ErrUnavailable},
		{gatt.StateUnauthorized, transport.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			p := testProvider(&fakeCentral{})
			p.stateChanged(tt.state)
			_, err := p.RequestDevice(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequestDeviceWaitsForState(t *testing.T) {
	p := newProvider()
	p.central = &fakeCentral{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.RequestDevice(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestDeviceMatches(t *testing.T) {
	c := &fakeCentral{}
	p := testProvider(c, WithServiceUUID("0000FFF0-0000-1000-8000-00805F9B34FB"))
	c.onScan = func() {
		p.discovered(&fakePeripheral{id: "AA:00:00:00:00:01"}, "Speaker", nil)
		p.discovered(&fakePeripheral{id: "AA:00:00:00:00:02"}, "", []string{"0000fff0-0000-1000-8000-00805f9b34fb"})
	}

	dev, err := p.RequestDevice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AA:00:00:00:00:02", dev.ID)
	assert.Equal(t, 1, c.stops)
}

func TestRequestDeviceTimeout(t *testing.T) {
	c := &fakeCentral{}
	p := testProvider(c)
	_, err := p.RequestDevice(context.Background())
	assert.ErrorIs(t, err, transport.ErrNoDevice)
	assert.Equal(t, 1, c.scans)
	assert.Equal(t, 1, c.stops)
}

func TestOpenUnknownPeripheral(t *testing.T) {
	p := testProvider(&fakeCentral{})
	_, err := p.Open(context.Background(), transport.Device{ID: glowID})
	assert.ErrorIs(t, err, transport.ErrNotFound)
}

func TestOpenConnectError(t *testing.T) {
	c := &fakeCentral{}
	p := testProvider(c)
	per := &fakePeripheral{id: glowID, name: "NutriGlow-1A2B"}
	p.discovered(per, per.name, nil)

	refused := errors.New("connection refused")
	c.onConn = func(id string) { p.connected(id, refused) }
	_, err := p.Open(context.Background(), transport.Device{ID: glowID})
	assert.ErrorIs(t, err, refused)
}

func TestOpenCancelled(t *testing.T) {
	c := &fakeCentral{}
	p := testProvider(c)
	p.discovered(&fakePeripheral{id: glowID}, "NutriGlow", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Open(ctx, transport.Device{ID: glowID})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{glowID}, c.cancels)
}

func TestSessionServices(t *testing.T) {
	_, _, sess := connectedSession(t)

	services, err := sess.Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "0000180f-0000-1000-8000-00805f9b34fb", services[0].UUID())

	svc, err := sess.Service(context.Background(), "0000FFF0-0000-1000-8000-00805F9B34FB")
	require.NoError(t, err)
	chars, err := svc.Characteristics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, chars)

	_, err = sess.Service(context.Background(), "0000fff9-0000-1000-8000-00805f9b34fb")
	assert.ErrorIs(t, err, transport.ErrNotFound)
}

func TestLinkLost(t *testing.T) {
	p, _, sess := connectedSession(t)

	p.disconnected(glowID, errors.New("supervision timeout"))
	select {
	case <-sess.LinkLost():
	default:
		t.Fatal("link loss not reported")
	}

	_, err := sess.Services(context.Background())
	assert.ErrorIs(t, err, transport.ErrClosed)
}

func TestCloseIsNotLinkLoss(t *testing.T) {
	p, c, sess := connectedSession(t)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
	p.disconnected(glowID, nil)

	select {
	case <-sess.LinkLost():
		t.Fatal("local close reported as link loss")
	default:
	}
	assert.Equal(t, []string{glowID}, c.cancels)
}

func TestOpenDisconnectRightAfterConnect(t *testing.T) {
	c := &fakeCentral{}
	p := testProvider(c)
	p.discovered(&fakePeripheral{id: glowID}, "NutriGlow", nil)
	c.onConn = func(id string) {
		p.connected(id, nil)
		p.disconnected(id, errors.New("connection failed to be established"))
	}

	sess, err := p.Open(context.Background(), transport.Device{ID: glowID})
	require.NoError(t, err)
	select {
	case <-sess.LinkLost():
	case <-time.After(time.Second):
		t.Fatal("disconnect right after connect was dropped")
	}
}

// stuckWrite starts a write that never completes on its own.
func stuckWrite(t *testing.T) (*Provider, *fakeCentral, *Session, *Characteristic) {
	t.Helper()
	per := glowPeripheral()
	per.writing = make(chan struct{}, 1)
	per.hang = make(chan struct{})
	t.Cleanup(func() { close(per.hang) })

	p, c, sess := connectedSessionWith(t, per)
	char := &Characteristic{
		session: sess,
		uuid:    "0000fff1-0000-1000-8000-00805f9b34fb",
		props:   transport.PropWrite,
	}
	go func() {
		_ = char.Write(context.Background(), []byte{0x01}, transport.WriteWithResponse)
	}()
	select {
	case <-per.writing:
	case <-time.After(time.Second):
		t.Fatal("write did not start")
	}
	return p, c, sess, char
}

func TestLinkLostDuringStuckWrite(t *testing.T) {
	p, _, sess, char := stuckWrite(t)

	p.disconnected(glowID, errors.New("supervision timeout"))
	select {
	case <-sess.LinkLost():
	case <-time.After(time.Second):
		t.Fatal("link loss not reported while a write was in flight")
	}

	// Later procedures fail instead of queueing behind the stuck write.
	err := char.Write(context.Background(), []byte{0x02}, transport.WriteWithResponse)
	assert.ErrorIs(t, err, transport.ErrClosed)
	_, err = sess.Services(context.Background())
	assert.ErrorIs(t, err, transport.ErrClosed)
}

func TestCloseDuringStuckWrite(t *testing.T) {
	_, c, sess, _ := stuckWrite(t)

	done := make(chan error, 1)
	go func() { done <- sess.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close waited for the in-flight write")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, []string{glowID}, c.cancels)
}

func TestWriteWaitsForRunningProcedure(t *testing.T) {
	_, _, _, char := stuckWrite(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := char.Write(ctx, []byte{0x02}, transport.WriteWithResponse)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
