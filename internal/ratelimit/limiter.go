// Package ratelimit provides token bucket rate limiting for API clients.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter.
// It is safe for concurrent use.
//
// Tokens are added at refillRate per second up to maxTokens; each request
// consumes one token.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// New creates a limiter that starts full.
//
//	// 2 requests per second with a burst of 10
//	limiter := ratelimit.New(10, 2)
func New(maxTokens, refillRate float64) *Limiter {
	return newWithClock(maxTokens, refillRate, time.Now)
}

// NewPerMinute creates a limiter allowing requestsPerMinute on average with
// bursts of up to burst requests. A burst below 1 is raised to 1.
func NewPerMinute(requestsPerMinute float64, burst int) *Limiter {
	return New(math.Max(float64(burst), 1), requestsPerMinute/60)
}

func newWithClock(maxTokens, refillRate float64, now func() time.Time) *Limiter {
	return &Limiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// refill adds tokens based on elapsed time since last refill.
// Must be called with mu held.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	l.tokens += elapsed * l.refillRate
	if l.tokens > l.maxTokens {
		l.tokens = l.maxTokens
	}
	l.lastRefill = now
}

// Allow consumes a token when one is available. It never blocks.
func (l *Limiter) Allow() bool {
	ok, _ := l.Reserve()
	return ok
}

// Reserve consumes a token when one is available. Otherwise it reports how
// long until the next token.
func (l *Limiter) Reserve() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true, 0
	}
	if l.refillRate <= 0 {
		return false, time.Duration(math.MaxInt64)
	}
	wait := (1 - l.tokens) / l.refillRate
	return false, time.Duration(wait * float64(time.Second))
}

// Available returns the current number of available tokens.
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens
}

// IsFull reports whether the bucket is back at capacity, which marks an
// idle client that can be forgotten.
func (l *Limiter) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= l.maxTokens
}

// Reset refills the bucket.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens = l.maxTokens
	l.lastRefill = l.now()
}
