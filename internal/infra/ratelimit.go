package infra

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket: burst tokens refill at one bucket per
// window. EDGAR enforces 10 req/s per User-Agent, FRED 120 req/min; each
// fetcher carries its own limiter sized for its upstream.
type RateLimiter struct {
	mu     sync.Mutex
	tokens int
	burst  int
	window time.Duration
	last   time.Time
}

func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens: burst,
		burst:  burst,
		window: window,
		last:   time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Allow reports whether a token is immediately available, consuming one if
// so.
func (rl *RateLimiter) Allow() bool {
	return rl.take()
}

func (rl *RateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if elapsed := now.Sub(rl.last); elapsed >= rl.window {
		refills := int(elapsed / rl.window)
		rl.tokens += refills * rl.burst
		if rl.tokens > rl.burst {
			rl.tokens = rl.burst
		}
		rl.last = rl.last.Add(time.Duration(refills) * rl.window)
	}
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}
