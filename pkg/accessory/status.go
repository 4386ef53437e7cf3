package accessory

import (
	"fmt"
	"sync"

	"github.com/nutriglow/nutriglow-go/pkg/command"
	"github.com/nutriglow/nutriglow-go/pkg/connection"
)

// Status is a snapshot of the externally observable link state.
type Status struct {
	// State is the link state.
	State connection.State

	// LastError is the class message of the last connect or reconnect
	// failure, empty when none is recorded.
	LastError string

	// DeviceName is the display name of the selected accessory.
	DeviceName string

	// Attempt is the current reconnect attempt, 0 unless Reconnecting.
	Attempt int

	// LastCommand is the last command delivered on the current link.
	LastCommand *command.Code
}

// String returns a one-line summary.
func (s Status) String() string {
	out := s.State.String()
	if s.DeviceName != "" {
		out += " " + s.DeviceName
	}
	if s.Attempt > 0 {
		out += fmt.Sprintf(" attempt=%d", s.Attempt)
	}
	if s.LastCommand != nil {
		out += " last=" + s.LastCommand.String()
	}
	if s.LastError != "" {
		out += " error=" + s.LastError
	}
	return out
}

// StatusChange is one transition delivered to observers.
type StatusChange struct {
	Old Status
	New Status
}

// statusFeed fans status changes out to observers. Each observer has its
// own unbounded queue drained by a dedicated goroutine, so publishing never
// blocks and every observer sees every change in order.
type statusFeed struct {
	mu     sync.Mutex
	subs   map[uint64]*observer
	nextID uint64
	closed bool
}

func newStatusFeed() *statusFeed {
	return &statusFeed{subs: make(map[uint64]*observer)}
}

// publish enqueues a change for every observer. Callers serialize publish
// calls to fix the delivery order.
func (f *statusFeed) publish(c StatusChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.subs {
		o.push(c)
	}
}

// add registers an observer, queues initial if non-nil, and starts its
// pump. done runs when the pump exits. It returns a function that removes
// the observer; pending changes are dropped on removal.
func (f *statusFeed) add(deliver func(StatusChange, <-chan struct{}), done func(), initial *StatusChange) func() {
	o := &observer{
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		deliver: deliver,
	}
	if initial != nil {
		o.queue = append(o.queue, *initial)
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		if done != nil {
			done()
		}
		return func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = o
	f.mu.Unlock()

	go o.run(done)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(o.quit)
		})
	}
}

// close stops accepting observers. Existing observers drain what is queued
// and then exit.
func (f *statusFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, o := range f.subs {
		o.drain()
		delete(f.subs, id)
	}
}

type observer struct {
	mu       sync.Mutex
	queue    []StatusChange
	draining bool

	wake    chan struct{}
	quit    chan struct{}
	deliver func(StatusChange, <-chan struct{})
}

func (o *observer) push(c StatusChange) {
	o.mu.Lock()
	o.queue = append(o.queue, c)
	o.mu.Unlock()
	o.signal()
}

func (o *observer) drain() {
	o.mu.Lock()
	o.draining = true
	o.mu.Unlock()
	o.signal()
}

func (o *observer) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *observer) run(done func()) {
	if done != nil {
		defer done()
	}
	for {
		o.mu.Lock()
		if len(o.queue) == 0 {
			draining := o.draining
			o.mu.Unlock()
			if draining {
				return
			}
			select {
			case <-o.wake:
				continue
			case <-o.quit:
				return
			}
		}
		c := o.queue[0]
		o.queue[0] = StatusChange{}
		o.queue = o.queue[1:]
		o.mu.Unlock()

		select {
		case <-o.quit:
			return
		default:
		}
		o.deliver(c, o.quit)
	}
}
