package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter hands out a fixed number of tokens per refill period. The bucket is
// refilled all at once when the period has elapsed.
type TokenLimiter struct {
	sync.Mutex
	capacity     int
	remaining    int
	refillPeriod time.Duration
	lastRefill   time.Time
}

func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	return newTokenLimiter(tokensPerMinute, time.Minute)
}

func newTokenLimiter(capacity int, period time.Duration) *TokenLimiter {
	return &TokenLimiter{
		capacity:     capacity,
		remaining:    capacity,
		refillPeriod: period,
		lastRefill:   time.Now(),
	}
}

// Wait blocks until tokens are available or ctx is done.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.refill()

		l.Lock()
		if l.remaining >= tokens {
			l.remaining -= tokens
			l.Unlock()
			return nil
		}
		l.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (l *TokenLimiter) refill() {
	l.Lock()
	defer l.Unlock()

	now := time.Now()
	if now.Sub(l.lastRefill) >= l.refillPeriod {
		l.remaining = l.capacity
		l.lastRefill = now
	}
}

func (l *TokenLimiter) GetRemaining() int {
	l.Lock()
	defer l.Unlock()
	return l.remaining
}
