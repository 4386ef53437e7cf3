package accessory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutriglow/nutriglow-go/pkg/command"
	"github.com/nutriglow/nutriglow-go/pkg/connection"
	plog "github.com/nutriglow/nutriglow-go/pkg/log"
	"github.com/nutriglow/nutriglow-go/pkg/notify"
	"github.com/nutriglow/nutriglow-go/pkg/resolver"
	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Manager owns the link to one accessory: it connects, resolves the
// command endpoint, sends commands and recovers unsolicited link loss.
//
// All state lives in one mutex-guarded object. Every connect or reconnect
// sequence runs under an epoch; Disconnect bumps the epoch so a sequence
// that returns late closes whatever it opened instead of committing it.
type Manager struct {
	provider   transport.Provider
	resolver   *resolver.Resolver
	supervisor *connection.Supervisor
	sink       notify.Sink
	protocol   plog.Logger
	logger     *slog.Logger
	cfg        Config

	mu            sync.Mutex
	state         connection.State
	lastError     string
	deviceName    string
	attempt       int
	lastCommand   *command.Code
	link          *link
	events        plog.Logger
	epoch         uint64
	cancelConnect context.CancelFunc
	closed        bool

	feed *statusFeed
}

// New creates a Manager for the accessory reachable through provider.
func New(provider transport.Provider, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		sink:     notify.Nop{},
		protocol: plog.NoopLogger{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:      DefaultConfig(),
		state:    connection.StateDisconnected,
		feed:     newStatusFeed(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		m.resolver = resolver.New(resolver.WithLogger(m.logger))
	}
	m.events = m.protocol
	m.supervisor = connection.NewSupervisor(connection.SupervisorConfig{
		MaxAttempts: m.cfg.MaxAttempts,
		Backoff:     connection.BackoffConfig{Base: m.cfg.BaseDelay},
	})
	return m
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// Subscribe returns a channel that receives the current status and then
// every status change in order. The channel is closed by the returned
// cancel function or by Close.
func (m *Manager) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status)

	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.statusLocked()
	cancel := m.feed.add(func(c StatusChange, quit <-chan struct{}) {
		select {
		case ch <- c.New:
		case <-quit:
		}
	}, func() { close(ch) }, &StatusChange{Old: cur, New: cur})
	return ch, cancel
}

// OnStatusChange registers fn to be called with every status change in
// order, on a goroutine owned by the Manager. It returns a function that
// unregisters fn.
func (m *Manager) OnStatusChange(fn func(old, new Status)) func() {
	return m.feed.add(func(c StatusChange, _ <-chan struct{}) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("status observer panicked", "panic", r)
			}
		}()
		fn(c.Old, c.New)
	}, nil, nil)
}

// LinkInfo describes the live link.
type LinkInfo struct {
	Device             transport.Device
	ConnectionID       string
	ServiceUUID        string
	CharacteristicUUID string
	Strategy           string
	AckedWrite         bool
	UnackedWrite       bool
	Notify             bool
	Subscribed         bool
}

// Link returns details of the live link, if Connected.
func (m *Manager) Link() (LinkInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.link == nil {
		return LinkInfo{}, false
	}
	ep := m.link.endpoint
	return LinkInfo{
		Device:             m.link.device,
		ConnectionID:       m.link.log.ConnectionID(),
		ServiceUUID:        ep.ServiceUUID,
		CharacteristicUUID: ep.UUID(),
		Strategy:           ep.Strategy,
		AckedWrite:         ep.SupportsAckedWrite,
		UnackedWrite:       ep.SupportsUnackedWrite,
		Notify:             ep.SupportsNotify,
		Subscribed:         ep.Subscribed,
	}, true
}

// Connect selects an accessory, opens a session, resolves the command
// endpoint and sends OFF as a reset. It is valid from Disconnected and
// Failed.
//
// A failure moves to Failed and raises an Error notification, except a
// cancelled device selection, which returns ErrUserCancelled and moves back
// to Disconnected. Connect also returns ErrUserCancelled when Disconnect
// tears the new link down before Connect returns. Connect does not retry.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	switch m.state {
	case connection.StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case connection.StateConnecting, connection.StateReconnecting:
		m.mu.Unlock()
		return ErrConnectInProgress
	}

	old := m.statusLocked()
	m.epoch++
	epoch := m.epoch
	actx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.cancelConnect = cancel
	connID := uuid.NewString()
	m.events = plog.WithConnection(m.protocol, connID, "", "")
	m.state = connection.StateConnecting
	m.lastError = ""
	m.deviceName = ""
	m.lastCommand = nil
	m.commitLocked(old, "connect requested")
	m.mu.Unlock()

	var l *link
	dev, err := m.provider.RequestDevice(actx)
	if err == nil {
		l, err = m.open(actx, dev, connID)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		if l != nil {
			m.closeLink(l)
		}
		if err == nil {
			err = context.Canceled
		}
		return wrap(ErrUserCancelled, err)
	}
	m.cancelConnect = nil

	if err != nil {
		cerr := Classify(err)
		old := m.statusLocked()
		m.lastError = ErrorKind(cerr)
		if errors.Is(cerr, ErrUserCancelled) {
			m.state = connection.StateDisconnected
			m.commitLocked(old, m.lastError)
			m.mu.Unlock()
			m.logger.Info("accessory selection cancelled", "error", err)
			return cerr
		}
		m.state = connection.StateFailed
		m.commitLocked(old, cerr.Error())
		m.logErrorLocked(cerr, "connect")
		m.mu.Unlock()

		m.logger.Warn("accessory connect failed", "error", cerr)
		m.notify(notify.Error, cerr.Error())
		return cerr
	}

	m.attachLocked(l, "connected")
	m.mu.Unlock()

	if !m.afterConnect(ctx, l) {
		m.mu.Lock()
		state := m.state
		m.mu.Unlock()
		if state == connection.StateDisconnected {
			return wrap(ErrUserCancelled, context.Canceled)
		}
	}
	return nil
}

// Disconnect closes the link and cancels any connect or reconnect in
// progress, including a blocked device selection. It returns once no
// reconnect attempt can start. It is idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.epoch++
	cancel := m.cancelConnect
	m.cancelConnect = nil
	l := m.link
	m.link = nil
	prev := m.state
	if prev != connection.StateDisconnected {
		old := m.statusLocked()
		m.state = connection.StateDisconnected
		m.deviceName = ""
		m.attempt = 0
		m.lastError = ""
		m.lastCommand = nil
		m.commitLocked(old, "disconnect requested")
	}
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.supervisor.Cancel()

	if l != nil {
		m.closeLink(l)
	}
	if l != nil || prev == connection.StateReconnecting {
		m.notify(notify.Disconnected, "Accessory disconnected")
	}
}

// SendCommand writes code to the accessory. It is valid only while
// Connected; otherwise it returns ErrNotConnected without writing. A write
// failure is returned wrapped in ErrWriteFailed and raises an Error
// notification but does not change the state.
func (m *Manager) SendCommand(ctx context.Context, code command.Code) error {
	if !code.Valid() {
		return wrap(ErrInvalidCommand, fmt.Errorf("%w: %d", command.ErrInvalidCode, uint8(code)))
	}

	m.mu.Lock()
	l := m.link
	state := m.state
	m.mu.Unlock()
	if state != connection.StateConnected || l == nil {
		return ErrNotConnected
	}

	err := m.send(ctx, l, code)
	if err == nil {
		return nil
	}
	if errors.Is(err, command.ErrSuperseded) {
		return err
	}

	werr := wrap(ErrWriteFailed, err)
	m.logger.Warn("command write failed", "command", code.String(), "error", err)
	m.notify(notify.Error, werr.Error())
	return werr
}

// Close disconnects and ends all status subscriptions. Further Connect
// calls return ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.Disconnect()
	m.feed.close()
	return nil
}

// open opens a session to dev and resolves its command endpoint. The
// session is closed again if resolution fails.
func (m *Manager) open(ctx context.Context, dev transport.Device, connID string) (*link, error) {
	events := plog.WithConnection(m.protocol, connID, dev.ID, dev.DisplayName())

	sess, err := m.provider.Open(ctx, dev)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dev.DisplayName(), err)
	}

	l := &link{
		session: sess,
		device:  dev,
		log:     events,
		stop:    make(chan struct{}),
	}
	ep, err := m.resolver.Resolve(ctx, sess, l.observe)
	if err != nil {
		if cerr := sess.Close(); cerr != nil {
			m.logger.Debug("close after failed resolve", "error", cerr)
		}
		return nil, err
	}
	l.endpoint = ep
	l.channel = command.NewChannel(ep,
		command.WithSink(m.sink),
		command.WithProtocolLogger(events),
		command.WithLogger(m.logger))

	events.Log(plog.Event{
		Direction: plog.DirectionLocal,
		Layer:     plog.LayerConnection,
		Category:  plog.CategoryState,
		StateChange: &plog.StateChangeEvent{
			Entity:   plog.StateEntityEndpoint,
			NewState: "RESOLVED",
			Reason:   ep.Strategy + " " + ep.UUID(),
		},
	})
	return l, nil
}

// attachLocked makes l the live link and moves to Connected.
func (m *Manager) attachLocked(l *link, reason string) {
	old := m.statusLocked()
	m.link = l
	m.events = l.log
	m.deviceName = l.device.DisplayName()
	m.attempt = 0
	m.lastError = ""
	m.lastCommand = nil
	m.state = connection.StateConnected
	m.commitLocked(old, reason)

	go m.watch(l)
}

// afterConnect sends the reset command and raises the Connected notification.
// afterConnect sends the reset and announces l. It reports whether l is
// still the live link; a link closed meanwhile raises no notification.
func (m *Manager) afterConnect(ctx context.Context, l *link) bool {
	if !m.cfg.SkipReset {
		if err := m.send(ctx, l, command.Off); err != nil && m.isLink(l) {
			m.logger.Warn("reset command failed", "device", l.device.DisplayName(), "error", err)
			m.notify(notify.Error, wrap(ErrWriteFailed, err).Error())
		}
	}

	if !m.isLink(l) {
		m.logger.Debug("link closed before it was announced", "device", l.device.DisplayName())
		return false
	}
	m.logger.Info("accessory connected", "device", l.device.DisplayName(), "endpoint", l.endpoint.UUID())
	m.notify(notify.Connected, "Connected to "+l.device.DisplayName())
	return true
}

func (m *Manager) isLink(l *link) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.link == l
}

func (m *Manager) send(ctx context.Context, l *link, code command.Code) error {
	if err := l.channel.Send(ctx, code); err != nil {
		return err
	}
	m.mu.Lock()
	if m.link == l {
		c := code
		m.lastCommand = &c
	}
	m.mu.Unlock()
	return nil
}

// watch waits for the session to drop or for the link to be closed locally.
func (m *Manager) watch(l *link) {
	select {
	case <-l.session.LinkLost():
		m.linkLost(l)
	case <-l.stop:
	}
}

// linkLost hands an unsolicited disconnect to the reconnect supervisor.
func (m *Manager) linkLost(l *link) {
	m.mu.Lock()
	if m.link != l || m.state != connection.StateConnected {
		m.mu.Unlock()
		return
	}
	old := m.statusLocked()
	m.link = nil
	m.lastCommand = nil
	m.epoch++
	r := &recovery{m: m, epoch: m.epoch, device: l.device, connID: uuid.NewString()}
	m.state = connection.StateReconnecting
	m.commitLocked(old, "link lost")
	started := m.supervisor.Start(r.attempt, r.handlers())
	m.mu.Unlock()

	m.closeLink(l)
	if !started {
		m.logger.Error("reconnect sequence already active", "device", l.device.DisplayName())
	}
	m.logger.Info("accessory link lost", "device", l.device.DisplayName())
	m.notify(notify.Disconnected, "Connection to "+l.device.DisplayName()+" lost")
}

func (m *Manager) closeLink(l *link) {
	if err := l.close(); err != nil {
		m.logger.Debug("close session", "device", l.device.DisplayName(), "error", err)
	}
}

func (m *Manager) notify(kind notify.Kind, message string) {
	if !notify.Safe(m.sink, kind, message) {
		m.logger.Error("notification sink panicked", "kind", kind.String())
	}
}

func (m *Manager) statusLocked() Status {
	st := Status{
		State:      m.state,
		LastError:  m.lastError,
		DeviceName: m.deviceName,
		Attempt:    m.attempt,
	}
	if m.lastCommand != nil {
		c := *m.lastCommand
		st.LastCommand = &c
	}
	return st
}

// commitLocked records and publishes the change from old to the current
// status. Publishing under the lock fixes the order observers see.
func (m *Manager) commitLocked(old Status, reason string) {
	cur := m.statusLocked()
	if old.State != cur.State && !connection.ValidTransition(old.State, cur.State) {
		m.logger.Error("invalid state transition", "from", old.State.String(), "to", cur.State.String())
	}
	m.logger.Debug("accessory state",
		"from", old.State.String(),
		"to", cur.State.String(),
		"attempt", cur.Attempt,
		"reason", reason)

	entity := plog.StateEntityConnection
	if old.State == cur.State {
		entity = plog.StateEntityReconnect
	}
	m.events.Log(plog.Event{
		Timestamp: time.Now(),
		Direction: plog.DirectionLocal,
		Layer:     plog.LayerConnection,
		Category:  plog.CategoryState,
		StateChange: &plog.StateChangeEvent{
			Entity:   entity,
			OldState: old.State.String(),
			NewState: cur.State.String(),
			Reason:   reason,
			Attempt:  cur.Attempt,
		},
	})
	m.feed.publish(StatusChange{Old: old, New: cur})
}

func (m *Manager) logErrorLocked(err error, op string) {
	m.events.Log(plog.Event{
		Timestamp: time.Now(),
		Direction: plog.DirectionLocal,
		Layer:     plog.LayerConnection,
		Category:  plog.CategoryError,
		Error: &plog.ErrorEventData{
			Layer:   plog.LayerConnection,
			Message: err.Error(),
			Kind:    ErrorKind(err),
			Context: op,
		},
	})
}

// link is one live session and its resolved endpoint.
type link struct {
	session  transport.Session
	device   transport.Device
	endpoint *resolver.Endpoint
	channel  *command.Channel
	log      *plog.ConnectionLogger

	stop     chan struct{}
	stopOnce sync.Once
}

func (l *link) observe(ep *resolver.Endpoint, data []byte) {
	l.log.Log(plog.Event{
		Direction:    plog.DirectionIn,
		Layer:        plog.LayerTransport,
		Category:     plog.CategoryNotification,
		Notification: plog.NewNotificationEvent(ep.UUID(), data),
	})
}

func (l *link) close() error {
	l.stopOnce.Do(func() { close(l.stop) })
	return l.session.Close()
}

// recovery is one reconnect sequence started by a link loss. Its methods
// run on the supervisor goroutine.
type recovery struct {
	m       *Manager
	epoch   uint64
	device  transport.Device
	connID  string
	pending *link
}

func (r *recovery) handlers() connection.Handlers {
	return connection.Handlers{
		OnAttempt:   r.onAttempt,
		OnFailure:   r.onFailure,
		OnSuccess:   r.onSuccess,
		OnExhausted: r.onExhausted,
	}
}

func (r *recovery) current() bool {
	return r.m.epoch == r.epoch && r.m.state == connection.StateReconnecting
}

func (r *recovery) attempt(ctx context.Context, n int) error {
	m := r.m
	if m.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.AttemptTimeout)
		defer cancel()
	}
	l, err := m.open(ctx, r.device, r.connID)
	if err != nil {
		return err
	}
	r.pending = l
	return nil
}

func (r *recovery) onAttempt(n int, delay time.Duration) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if !r.current() {
		return
	}
	old := m.statusLocked()
	m.attempt = n
	m.commitLocked(old, fmt.Sprintf("attempt %d/%d in %s", n, m.cfg.MaxAttempts, delay))
}

func (r *recovery) onFailure(n int, err error) {
	m := r.m
	m.logger.Info("reconnect attempt failed", "device", r.device.DisplayName(), "attempt", n, "error", err)

	m.mu.Lock()
	defer m.mu.Unlock()
	if r.current() {
		m.logErrorLocked(Classify(err), fmt.Sprintf("reconnect attempt %d", n))
	}
}

func (r *recovery) onSuccess(n int) {
	m := r.m
	l := r.pending
	r.pending = nil
	if l == nil {
		return
	}

	m.mu.Lock()
	if !r.current() {
		m.mu.Unlock()
		m.closeLink(l)
		return
	}
	m.attachLocked(l, fmt.Sprintf("reconnected on attempt %d", n))
	m.mu.Unlock()

	m.afterConnect(context.Background(), l)
}

func (r *recovery) onExhausted(n int, err error) {
	m := r.m
	m.mu.Lock()
	if !r.current() {
		m.mu.Unlock()
		return
	}
	old := m.statusLocked()
	m.deviceName = ""
	m.attempt = 0
	m.lastError = ErrDeviceDisconnected.Error()
	m.state = connection.StateFailed
	m.commitLocked(old, err.Error())
	m.logErrorLocked(wrap(ErrDeviceDisconnected, err), "reconnect")
	m.mu.Unlock()

	m.logger.Warn("accessory reconnect failed", "device", r.device.DisplayName(), "attempts", n, "error", err)
	m.notify(notify.Error, ErrDeviceDisconnected.Error())
}
