// Package sim provides an in-memory simulated accessory implementing the
// transport interfaces.
//
// The simulator supports failure injection for device selection, session
// open and writes, link-drop simulation and notification pushes. It is used
// by tests throughout the module and by glowctl's demo transport.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nutriglow/nutriglow-go/pkg/transport"
)

// Write records one characteristic write observed by the simulator.
type Write struct {
	Session        int
	Characteristic string
	Data           []byte
	Mode           transport.WriteMode
}

// Provider is a simulated transport.Provider.
type Provider struct {
	mu sync.Mutex

	accessory Accessory

	requestErr     error
	blockSelection bool
	openErr        error
	openFailures   int
	openDelay      time.Duration
	writeErr       error
	rejectAcked    bool
	subscribeErr   error

	requests int
	opens    int
	writes   []Write
	sessions []*Session
}

var _ transport.Provider = (*Provider)(nil)

// New creates a simulator for the given accessory layout.
func New(acc Accessory) *Provider {
	return &Provider{accessory: acc}
}

// SetRequestError makes RequestDevice fail with err. Nil clears it.
func (p *Provider) SetRequestError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestErr = err
}

// SetBlockSelection makes RequestDevice block until its context is done,
// as a chooser left open by the user would.
func (p *Provider) SetBlockSelection(block bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blockSelection = block
}

// SetOpenError makes every Open fail with err. Nil clears it.
func (p *Provider) SetOpenError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.openErr = err
	p.openFailures = 0
}

// FailNextOpens makes the next n Open calls fail with err.
func (p *Provider) FailNextOpens(n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.openErr = err
	p.openFailures = n
}

// SetOpenDelay delays every Open by d, honouring context cancellation.
func (p *Provider) SetOpenDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.openDelay = d
}

// SetWriteError makes every write fail with err. Nil clears it.
func (p *Provider) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// SetRejectAcked makes acked writes fail with ErrNotSupported even when the
// characteristic advertises them.
func (p *Provider) SetRejectAcked(reject bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejectAcked = reject
}

// SetSubscribeError makes Subscribe fail with err. Nil clears it.
func (p *Provider) SetSubscribeError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribeErr = err
}

// RequestDevice implements transport.Provider.
func (p *Provider) RequestDevice(ctx context.Context) (transport.Device, error) {
	p.mu.Lock()
	p.requests++
	block := p.blockSelection
	err := p.requestErr
	dev := p.accessory.device()
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return transport.Device{}, fmt.Errorf("%w: %w", transport.ErrCancelled, ctx.Err())
	}
	if err != nil {
		return transport.Device{}, err
	}
	if ctx.Err() != nil {
		return transport.Device{}, fmt.Errorf("%w: %w", transport.ErrCancelled, ctx.Err())
	}
	return dev, nil
}

// Open implements transport.Provider.
func (p *Provider) Open(ctx context.Context, dev transport.Device) (transport.Session, error) {
	p.mu.Lock()
	p.opens++
	delay := p.openDelay
	var err error
	if p.openErr != nil {
		err = p.openErr
		if p.openFailures > 0 {
			p.openFailures--
			if p.openFailures == 0 {
				p.openErr = nil
			}
		}
	}
	p.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if dev.ID != p.accessory.ID {
		return nil, fmt.Errorf("open %s: %w", dev.ID, transport.ErrNotFound)
	}
	s := newSession(p, len(p.sessions)+1, dev, p.accessory.Services)
	p.sessions = append(p.sessions, s)
	return s, nil
}

// DropLink simulates an unsolicited disconnect of the most recent live session.
// Returns false if no session is live.
func (p *Provider) DropLink() bool {
	p.mu.Lock()
	var s *Session
	for i := len(p.sessions) - 1; i >= 0; i-- {
		if !p.sessions[i].isClosed() {
			s = p.sessions[i]
			break
		}
	}
	p.mu.Unlock()

	if s == nil {
		return false
	}
	s.drop()
	return true
}

// Notify pushes a value-change notification on the given characteristic of
// every live session. Returns the number of subscribers reached.
func (p *Provider) Notify(charUUID string, data []byte) int {
	p.mu.Lock()
	sessions := append([]*Session(nil), p.sessions...)
	p.mu.Unlock()

	n := 0
	for _, s := range sessions {
		n += s.notify(charUUID, data)
	}
	return n
}

// RequestCount returns how many times RequestDevice was called.
func (p *Provider) RequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

// OpenCount returns how many times Open was called.
func (p *Provider) OpenCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens
}

// SessionCount returns how many sessions were successfully opened.
func (p *Provider) SessionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// LiveSessions returns how many opened sessions are neither closed nor dropped.
func (p *Provider) LiveSessions() int {
	p.mu.Lock()
	sessions := append([]*Session(nil), p.sessions...)
	p.mu.Unlock()

	n := 0
	for _, s := range sessions {
		if !s.isClosed() {
			n++
		}
	}
	return n
}

// Writes returns a copy of all writes observed so far.
func (p *Provider) Writes() []Write {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Write, len(p.writes))
	copy(out, p.writes)
	return out
}

// ResetWrites clears the recorded writes.
func (p *Provider) ResetWrites() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = nil
}

func (p *Provider) recordWrite(w Write) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	if w.Mode == transport.WriteWithResponse && p.rejectAcked {
		return fmt.Errorf("write %s: %w", w.Characteristic, transport.ErrNotSupported)
	}
	p.writes = append(p.writes, w)
	return nil
}

func (p *Provider) subscribeError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subscribeErr
}
