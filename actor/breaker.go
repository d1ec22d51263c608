package actor

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by Breaker.Call while the breaker rejects
// requests.
var ErrBreakerOpen = errors.New("breaker open")

// BreakerState is the state of a circuit breaker.
type BreakerState int

const (
	// BreakerClosed lets calls through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects all calls until the cooldown elapses.
	BreakerOpen
	// BreakerHalfOpen lets a limited number of probe calls through.
	BreakerHalfOpen
)

// String returns the state name.
func (bs BreakerState) String() string {
	switch bs {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker guards calls to an unreliable collaborator. After maxFailures
// consecutive failures it opens and rejects calls for the cooldown; it
// then half-opens and probes before closing again.
type Breaker struct {
	mu          sync.Mutex
	name        string
	state       BreakerState
	failures    int
	successes   int
	maxFailures int
	cooldown    time.Duration
	lastFailure time.Time
	probeLimit  int
	probes      int
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, maxFailures int, cooldown time.Duration) *Breaker {
	return &Breaker{
		name:        name,
		state:       BreakerClosed,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		probeLimit:  3,
	}
}

// Call executes fn under the breaker. It returns ErrBreakerOpen without
// invoking fn while the breaker rejects calls.
func (b *Breaker) Call(fn func() error) error {
	if !b.allow() {
		return fmt.Errorf("%s: %w", b.name, ErrBreakerOpen)
	}
	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if time.Since(b.lastFailure) > b.cooldown {
			b.state = BreakerHalfOpen
			b.probes = 1
			b.successes = 0
			return true
		}
		return false
	case BreakerHalfOpen:
		if b.probes < b.probeLimit {
			b.probes++
			return true
		}
		return false
	default:
		return false
	}
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		b.lastFailure = time.Now()
		if b.failures >= b.maxFailures {
			b.state = BreakerOpen
		}

	case BreakerHalfOpen:
		if !success {
			b.state = BreakerOpen
			b.lastFailure = time.Now()
			b.successes = 0
			return
		}
		b.successes++
		if b.successes >= b.successThreshold() {
			b.state = BreakerClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

func (b *Breaker) successThreshold() int {
	if t := b.maxFailures / 2; t > 1 {
		return t
	}
	return 1
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
	b.successes = 0
	b.probes = 0
}
