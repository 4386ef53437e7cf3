package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRetriesExhausted is reported when every attempt of a sequence failed.
var ErrRetriesExhausted = errors.New("reconnect attempts exhausted")

// AttemptFunc runs one reconnect attempt. It must return promptly when ctx
// is cancelled.
type AttemptFunc func(ctx context.Context, attempt int) error

// Handlers receive sequence progress. All are optional and run on the
// sequence goroutine. OnAttempt and OnFailure must not call Cancel.
type Handlers struct {
	// OnAttempt is called before the wait preceding each attempt.
	OnAttempt func(attempt int, delay time.Duration)

	// OnFailure is called after a failed attempt.
	OnFailure func(attempt int, err error)

	// OnSuccess is called once the sequence has ended successfully. It is
	// called whenever an attempt returned nil, even if Cancel raced with it.
	OnSuccess func(attempt int)

	// OnExhausted is called once the sequence has ended without success.
	// err wraps ErrRetriesExhausted and the last attempt error.
	OnExhausted func(attempts int, err error)
}

// SupervisorConfig configures a Supervisor.
type SupervisorConfig struct {
	// MaxAttempts per sequence. Zero uses DefaultMaxAttempts.
	MaxAttempts int

	// Backoff schedules the wait before each attempt.
	Backoff BackoffConfig
}

// Supervisor runs bounded reconnect sequences, one at a time.
type Supervisor struct {
	mu sync.Mutex

	maxAttempts int
	backoff     *Backoff

	running bool
	attempt int
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Supervisor{
		maxAttempts: cfg.MaxAttempts,
		backoff:     NewBackoffWithConfig(cfg.Backoff),
	}
}

// MaxAttempts returns the attempt limit per sequence.
func (s *Supervisor) MaxAttempts() int {
	return s.maxAttempts
}

// Active reports whether a sequence is running.
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Attempt returns the current 1-based attempt number, or 0 when idle.
func (s *Supervisor) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Start begins a sequence that calls fn up to MaxAttempts times.
// It returns false without doing anything if a sequence is already active.
func (s *Supervisor) Start(fn AttemptFunc, h Handlers) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.running = true
	s.attempt = 0
	s.cancel = cancel
	s.done = done
	s.backoff.Reset()

	go s.run(ctx, done, fn, h)
	return true
}

// Cancel stops the active sequence, if any, and waits for its pending wait
// or attempt to return. No attempt starts after Cancel returns. Handlers of
// a sequence that already ended may still be running; Cancel does not wait
// for them, so they may call into code that calls Cancel.
func (s *Supervisor) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Supervisor) run(ctx context.Context, done chan struct{}, fn AttemptFunc, h Handlers) {
	defer close(done)

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		delay := s.backoff.Next()

		s.mu.Lock()
		s.attempt = attempt
		s.mu.Unlock()

		if h.OnAttempt != nil {
			h.OnAttempt(attempt, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.finish()
			return
		case <-timer.C:
		}

		err := fn(ctx, attempt)
		if err == nil {
			// Reported even if cancelled meanwhile; OnSuccess owns the result.
			s.finish()
			if h.OnSuccess != nil {
				h.OnSuccess(attempt)
			}
			return
		}
		if ctx.Err() != nil {
			s.finish()
			return
		}

		lastErr = err
		if h.OnFailure != nil {
			h.OnFailure(attempt, err)
		}
	}

	s.finish()
	if h.OnExhausted != nil {
		h.OnExhausted(s.maxAttempts, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, s.maxAttempts, lastErr))
	}
}

// finish marks the sequence idle so a new link loss can start another.
func (s *Supervisor) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
	s.attempt = 0
	s.cancel = nil
	s.done = nil
	s.backoff.Reset()
}
