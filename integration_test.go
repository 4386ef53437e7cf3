package nutriglow_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriglow/nutriglow-go/pkg/accessory"
	"github.com/nutriglow/nutriglow-go/pkg/command"
	"github.com/nutriglow/nutriglow-go/pkg/config"
	"github.com/nutriglow/nutriglow-go/pkg/connection"
	plog "github.com/nutriglow/nutriglow-go/pkg/log"
	"github.com/nutriglow/nutriglow-go/pkg/notify"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
	"github.com/nutriglow/nutriglow-go/pkg/transport/sim"
)

const testConfig = `
transport:
  kind: sim
accessory:
  service_uuid: fff0
  characteristic_uuid: fff1
reconnect:
  max_attempts: 3
  base_delay: 10ms
`

// stack is a Manager wired the way glowctl wires it, on a simulated accessory.
type stack struct {
	sim     *sim.Provider
	mgr     *accessory.Manager
	sink    *notify.Recorder
	capture *plog.FileLogger
	logPath string
}

func newStack(t *testing.T, firmware string) *stack {
	t.Helper()

	cfg, err := config.Parse([]byte(testConfig), config.FormatYAML)
	require.NoError(t, err)

	fw, ok := sim.Firmware(firmware)
	require.True(t, ok, "firmware %s", firmware)

	s := &stack{
		sim:     sim.New(fw),
		sink:    &notify.Recorder{},
		logPath: filepath.Join(t.TempDir(), "e2e.glog"),
	}
	s.capture, err = plog.NewFileLogger(s.logPath)
	require.NoError(t, err)

	s.mgr = accessory.New(s.sim,
		accessory.WithConfig(cfg.ManagerConfig()),
		accessory.WithSink(s.sink),
		accessory.WithProtocolLogger(s.capture),
		accessory.WithResolver(resolver.New(resolver.WithStrategies(cfg.Strategies()...))),
	)
	t.Cleanup(func() {
		_ = s.mgr.Close()
		_ = s.capture.Close()
	})
	return s
}

// events closes the capture and reads it back.
func (s *stack) events(t *testing.T) []plog.Event {
	t.Helper()
	require.NoError(t, s.mgr.Close())
	require.NoError(t, s.capture.Close())
	events, err := plog.ReadAll(s.logPath, plog.Filter{})
	require.NoError(t, err)
	return events
}

func (s *stack) waitState(t *testing.T, want connection.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.mgr.Status().State == want
	}, 5*time.Second, 5*time.Millisecond, "state %s, want %s", s.mgr.Status().State, want)
}

func TestE2E_ConnectSendWater(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newStack(t, "nutriglow")
	require.NoError(t, s.mgr.Connect(ctx))

	st := s.mgr.Status()
	assert.Equal(t, connection.StateConnected, st.State)
	assert.Equal(t, "NutriGlow-1A2B", st.DeviceName)
	require.NotNil(t, st.LastCommand)
	assert.Equal(t, command.Off, *st.LastCommand)

	require.NoError(t, s.mgr.SendCommand(ctx, command.Water))
	assert.Equal(t, 1, s.sink.Count(notify.HydrationReminder))
	assert.Equal(t, 1, s.sink.Count(notify.Connected))

	writes := s.sim.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, []byte{0x00}, writes[0].Data)
	assert.Equal(t, []byte{0x01}, writes[1].Data)
	assert.Equal(t, transport.WriteWithResponse, writes[1].Mode)

	s.mgr.Disconnect()
	assert.Equal(t, 1, s.sink.Count(notify.Disconnected))

	var cmds []string
	var connIDs = map[string]bool{}
	for _, e := range s.events(t) {
		if e.Write != nil {
			cmds = append(cmds, e.Write.Command)
			connIDs[e.ConnectionID] = true
			assert.Equal(t, "NutriGlow-1A2B", e.DeviceName)
		}
	}
	assert.Equal(t, []string{"OFF", "WATER"}, cmds)
	assert.Len(t, connIDs, 1, "writes on one link share a connection ID")
}

func TestE2E_VendorEndpoint(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newStack(t, "vendor")
	require.NoError(t, s.mgr.Connect(ctx))

	info, ok := s.mgr.Link()
	require.True(t, ok)
	assert.Equal(t, resolver.FirstWritableEnumerated{}.Name(), info.Strategy)
	assert.Equal(t, sim.VendorCharacteristicUUID, info.CharacteristicUUID)

	require.NoError(t, s.mgr.SendCommand(ctx, command.BadFinish))
	writes := s.sim.Writes()
	require.NotEmpty(t, writes)
	assert.Equal(t, []byte{byte(command.BadFinish)}, writes[len(writes)-1].Data)
}

func TestE2E_UnackedFallback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newStack(t, "nutriglow")
	s.sim.SetRejectAcked(true)
	require.NoError(t, s.mgr.Connect(ctx))

	require.NoError(t, s.mgr.SendCommand(ctx, command.GreatFinish))
	assert.Zero(t, s.sink.Count(notify.Error))

	var fallback []string
	for _, e := range s.events(t) {
		if e.Write != nil && e.Write.Fallback {
			fallback = append(fallback, e.Write.Command)
			assert.False(t, e.Write.Acked)
		}
	}
	assert.Equal(t, []string{"OFF", "GREAT_FINISH"}, fallback)
}

func TestE2E_Reconnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newStack(t, "nutriglow")
	require.NoError(t, s.mgr.Connect(ctx))

	updates, stop := s.mgr.Subscribe()
	defer stop()

	// The first reconnect attempt fails, the second succeeds.
	s.sim.FailNextOpens(1, transport.ErrUnavailable)
	require.True(t, s.sim.DropLink())

	var seen []connection.State
	var attempts []int
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case st := <-updates:
			seen = append(seen, st.State)
			if st.Attempt > 0 {
				attempts = append(attempts, st.Attempt)
			}
			done = st.State == connection.StateConnected && len(seen) > 1
		case <-timeout:
			t.Fatalf("no reconnect; states %v", seen)
		}
	}

	assert.Equal(t, connection.StateReconnecting, seen[1])
	assert.Equal(t, []int{1, 2}, attempts)
	require.Eventually(t, func() bool {
		return s.sink.Count(notify.Connected) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.sink.Count(notify.Disconnected))
	assert.Equal(t, 1, s.sim.RequestCount(), "reconnect reuses the selected device")
	assert.Equal(t, 3, s.sim.OpenCount())
	assert.Equal(t, 1, s.sim.LiveSessions())

	require.NoError(t, s.mgr.SendCommand(ctx, command.Water))

	var reconnectSteps int
	for _, e := range s.events(t) {
		if sc := e.StateChange; sc != nil && sc.Entity == plog.StateEntityReconnect && sc.Attempt > 0 {
			reconnectSteps++
		}
	}
	assert.Equal(t, 2, reconnectSteps)
}

func TestE2E_ReconnectExhausted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newStack(t, "nutriglow")
	require.NoError(t, s.mgr.Connect(ctx))

	s.sim.SetOpenError(transport.ErrUnavailable)
	require.True(t, s.sim.DropLink())
	s.waitState(t, connection.StateFailed)

	st := s.mgr.Status()
	assert.Equal(t, accessory.ErrDeviceDisconnected.Error(), st.LastError)
	assert.Empty(t, st.DeviceName)
	require.Eventually(t, func() bool {
		return s.sink.Count(notify.Error) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, s.mgr.SendCommand(ctx, command.Water), accessory.ErrNotConnected)

	// A fresh connect recovers from Failed.
	s.sim.SetOpenError(nil)
	require.NoError(t, s.mgr.Connect(ctx))
	assert.Equal(t, connection.StateConnected, s.mgr.Status().State)
}

func TestE2E_ReadOnlyAccessory(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newStack(t, "readonly")
	err := s.mgr.Connect(ctx)
	require.ErrorIs(t, err, accessory.ErrNoEndpointFound)

	st := s.mgr.Status()
	assert.Equal(t, connection.StateFailed, st.State)
	assert.Equal(t, accessory.ErrNoEndpointFound.Error(), st.LastError)
	assert.Zero(t, s.sim.LiveSessions(), "session closed after failed resolve")
}
