package api

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

type BreakerConfig struct {
	MaxFailures     int
	ResetTimeout    time.Duration
	HalfOpenMaxSucc int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures:     5,
		ResetTimeout:    30 * time.Second,
		HalfOpenMaxSucc: 3,
	}
}

// Breaker fails calls to the backend fast while it is known to be down.
// It never retries on the caller's behalf; every call site decides whether
// to retry.
type Breaker struct {
	mu                sync.Mutex
	config            BreakerConfig
	state             BreakerState
	failures          int
	halfOpenSuccesses int
	lastFailureTime   time.Time
}

func NewBreaker(config BreakerConfig) *Breaker {
	return &Breaker{
		config: config,
		state:  BreakerClosed,
	}
}

func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && time.Since(b.lastFailureTime) > b.config.ResetTimeout {
		b.state = BreakerHalfOpen
		b.halfOpenSuccesses = 0
	}

	return b.state != BreakerOpen
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.config.HalfOpenMaxSucc {
			b.state = BreakerClosed
			b.failures = 0
			b.halfOpenSuccesses = 0
		}
	case BreakerClosed:
		b.failures = 0
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureTime = time.Now()

	switch b.state {
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.halfOpenSuccesses = 0
	case BreakerClosed:
		b.failures++
		if b.failures >= b.config.MaxFailures {
			b.state = BreakerOpen
		}
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
