package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request or the
	// context is cancelled
	Wait(ctx context.Context) error
	// Reset resets the rate limiter state
	Reset()
}

// Interval enforces a minimum spacing between admissions. A single Interval
// is shared by every goroutine issuing requests, so the process as a whole
// never starts two requests closer together than the configured gap, no
// matter how many branches are fetching concurrently.
type Interval struct {
	gap  time.Duration
	mu   sync.Mutex
	next time.Time // earliest instant the next admission may start
}

// NewInterval creates a pacing limiter with the given minimum spacing
func NewInterval(gap time.Duration) *Interval {
	return &Interval{gap: gap}
}

// Allow admits a request only if the spacing has already elapsed
func (iv *Interval) Allow() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	now := time.Now()
	if now.Before(iv.next) {
		return false
	}
	iv.next = now.Add(iv.gap)
	return true
}

// Wait reserves the next admission slot and sleeps until it arrives.
// Each waiter gets a distinct slot, so concurrent callers are admitted
// one gap apart in the order they called.
func (iv *Interval) Wait(ctx context.Context) error {
	iv.mu.Lock()
	now := time.Now()
	at := iv.next
	if at.Before(now) {
		at = now
	}
	iv.next = at.Add(iv.gap)
	iv.mu.Unlock()

	delay := time.Until(at)
	if delay <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Reset forgets the pacing state so the next request is admitted immediately
func (iv *Interval) Reset() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.next = time.Time{}
}

// Gap returns the configured minimum spacing
func (iv *Interval) Gap() time.Duration {
	return iv.gap
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available or the context is cancelled
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for !tb.Allow() {
		tb.mu.Lock()
		untilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if untilRefill <= 0 {
			untilRefill = 50 * time.Millisecond
		}

		timer := time.NewTimer(untilRefill)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	if elapsed >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}
