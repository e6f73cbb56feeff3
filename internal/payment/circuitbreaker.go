package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// BreakerConfig tunes a CircuitBreaker.
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

const (
	breakerClosed = iota
	breakerOpen
	breakerHalfOpen
)

// CircuitBreaker stops calling a failing processor. Only infrastructure failures trip
// it; declines and caller cancellations are passed through without being counted.
type CircuitBreaker struct {
	next Authorizer
	cfg  BreakerConfig
	now  func() time.Time

	mu           sync.Mutex
	state        int
	failures     int
	successes    int
	openedAt     time.Time
	halfInFlight bool
}

// NewCircuitBreaker wraps next.
func NewCircuitBreaker(next Authorizer, cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &CircuitBreaker{next: next, cfg: cfg, now: time.Now, state: breakerClosed}
}

// Authorize forwards to the wrapped authorizer unless the circuit is open.
func (b *CircuitBreaker) Authorize(ctx context.Context, instrument string, amount decimal.Decimal) (Authorization, error) {
	if err := b.beforeCall(); err != nil {
		return Authorization{}, err
	}
	auth, err := b.next.Authorize(ctx, instrument, amount)
	b.afterCall(err)
	return auth, err
}

func isFailure(err error) bool {
	if err == nil || errors.Is(err, ErrDeclined) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func (b *CircuitBreaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return nil
	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.state = breakerHalfOpen
		b.successes = 0
		b.halfInFlight = false
		fallthrough
	case breakerHalfOpen:
		if b.halfInFlight {
			return ErrCircuitOpen
		}
		b.halfInFlight = true
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (b *CircuitBreaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerHalfOpen {
		b.halfInFlight = false
	}

	if !isFailure(err) {
		switch b.state {
		case breakerClosed:
			b.failures = 0
		case breakerHalfOpen:
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.state = breakerClosed
				b.failures = 0
				b.successes = 0
			}
		}
		return
	}

	switch b.state {
	case breakerClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case breakerHalfOpen:
		b.trip()
	}
}

func (b *CircuitBreaker) trip() {
	b.state = breakerOpen
	b.openedAt = b.now()
	b.successes = 0
	b.halfInFlight = false
}
