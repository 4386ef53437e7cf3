package connection

import (
	"math/rand"
	"sync"
	"time"
)

// Backoff defaults.
const (
	// DefaultBaseDelay is the delay unit; attempt n waits n times this.
	DefaultBaseDelay = 1 * time.Second

	// DefaultMaxAttempts is the number of reconnect attempts per sequence.
	DefaultMaxAttempts = 3
)

// Backoff calculates linear backoff delays with optional jitter and cap.
type Backoff struct {
	mu sync.Mutex

	// Configuration
	base   time.Duration
	max    time.Duration
	jitter float64

	// Attempt counter
	attempts int

	// Random source for jitter
	rng *rand.Rand
}

// BackoffConfig allows customizing backoff parameters.
type BackoffConfig struct {
	// Base is the delay unit. Zero uses DefaultBaseDelay.
	Base time.Duration

	// Max caps a single delay. Zero means no cap.
	Max time.Duration

	// Jitter is the maximum extra delay as a fraction of the base delay.
	Jitter float64
}

// NewBackoff creates a backoff calculator with default settings.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{})
}

// NewBackoffWithConfig creates a backoff calculator with custom settings.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Base <= 0 {
		cfg.Base = DefaultBaseDelay
	}
	if cfg.Max < 0 {
		cfg.Max = 0
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		base:   cfg.Base,
		max:    cfg.Max,
		jitter: cfg.Jitter,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay returns the base delay (without jitter) for a 1-based attempt.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.base * time.Duration(attempt)
	if b.max > 0 && d > b.max {
		d = b.max
	}
	return d
}

// Next advances the attempt counter and returns that attempt's delay with jitter.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attempts++
	return b.addJitter(b.Delay(b.attempts))
}

// Peek returns the delay the next call to Next would use, without advancing.
// With jitter enabled the value may differ from what Next returns.
func (b *Backoff) Peek() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addJitter(b.Delay(b.attempts + 1))
}

// Reset resets the attempt counter.
// Call this after a successful connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}

// Attempts returns the number of calls to Next since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// addJitter adds random jitter to a delay.
func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	return d + time.Duration(float64(d)*b.jitter*b.rng.Float64())
}

// Schedule returns the base delays for attempts 1..attempts.
func Schedule(base time.Duration, attempts int) []time.Duration {
	b := NewBackoffWithConfig(BackoffConfig{Base: base})
	out := make([]time.Duration, 0, attempts)
	for i := 1; i <= attempts; i++ {
		out = append(out, b.Delay(i))
	}
	return out
}
