// Package breaker implements the per-source circuit breaker: a
// fail-count gate with half-open recovery.
package breaker

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock seconds so tests can inject a fake time
// source for recovery-timeout assertions.
type Clock func() float64

// WallClock is the default Clock, returning seconds since epoch.
func WallClock() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// state is the per-source bookkeeping the breaker tracks.
type state struct {
	failures      int
	lastFailureTs float64
	open          bool
}

// Breaker gates per-source availability on a failure count and a
// recovery timeout. Zero value is not usable; construct with New.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  float64
	now              Clock

	states map[string]*state
}

// New constructs a Breaker with the given failure threshold and
// recovery timeout in seconds. A nil clock defaults to WallClock.
func New(failureThreshold int, recoveryTimeoutSeconds float64, clock Clock) *Breaker {
	if clock == nil {
		clock = WallClock
	}
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if recoveryTimeoutSeconds <= 0 {
		recoveryTimeoutSeconds = 300
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeoutSeconds,
		now:              clock,
		states:           make(map[string]*state),
	}
}

func (b *Breaker) stateFor(source string) *state {
	s, ok := b.states[source]
	if !ok {
		s = &state{}
		b.states[source] = s
	}
	return s
}

// RecordFailure increments the failure count and stamps the last
// failure time, opening the breaker once the count reaches the
// configured threshold.
func (b *Breaker) RecordFailure(source string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stateFor(source)
	s.failures++
	s.lastFailureTs = b.now()
	if s.failures >= b.failureThreshold {
		s.open = true
	}
}

// RecordSuccess decrements the failure count toward zero, closing the
// breaker if it was open and the count reaches zero.
func (b *Breaker) RecordSuccess(source string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stateFor(source)
	if s.failures > 0 {
		s.failures--
	}
	if s.open && s.failures == 0 {
		s.open = false
	}
}

// IsAvailable reports whether source may be polled right now. If the
// breaker is open and the recovery timeout has elapsed since the last
// failure, this call transitions the breaker to half-open as a side
// effect: failures is set to threshold-1, open is cleared, and true is
// returned. Later calls also return true until the next failure, which
// alone reopens the breaker. This mutate-on-query
// behavior is intentional; see DESIGN.md.
func (b *Breaker) IsAvailable(source string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stateFor(source)
	if !s.open {
		return true
	}
	if b.now()-s.lastFailureTs > b.recoveryTimeout {
		s.failures = b.failureThreshold - 1
		s.open = false
		return true
	}
	return false
}
