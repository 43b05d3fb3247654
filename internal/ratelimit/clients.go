package ratelimit

import (
	"sync"
	"time"
)

// ClientLimiterConfig configures a ClientLimiter.
type ClientLimiterConfig struct {
	RequestsPerMinute float64       // Average rate per client
	Burst             int           // Bucket capacity per client
	CleanupPeriod     time.Duration // How often idle clients are forgotten

	OnDrop   func()          // Optional callback when a request is dropped
	OnUpdate func(count int) // Optional callback after each cleanup
}

// ClientLimiter keeps one token bucket per client key (an IP address or
// API key) and drops buckets that have refilled completely.
type ClientLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	config   ClientLimiterConfig
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewClientLimiter creates a client limiter and starts its cleanup loop.
// Call Stop when done.
//
//	limiter := ratelimit.NewClientLimiter(ratelimit.ClientLimiterConfig{
//	    RequestsPerMinute: 120,
//	    Burst:             20,
//	    CleanupPeriod:     5 * time.Minute,
//	})
//	defer limiter.Stop()
func NewClientLimiter(cfg ClientLimiterConfig) *ClientLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	cl := &ClientLimiter{
		limiters: make(map[string]*Limiter),
		config:   cfg,
		stopCh:   make(chan struct{}),
	}

	go cl.cleanupLoop()

	return cl
}

// Allow consumes a token for key. When the client is over its limit it
// returns false and the time until the next token. An empty key is never
// limited.
func (cl *ClientLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		return true, 0
	}

	cl.mu.RLock()
	limiter, exists := cl.limiters[key]
	cl.mu.RUnlock()

	if !exists {
		cl.mu.Lock()
		// Double-check after acquiring write lock
		limiter, exists = cl.limiters[key]
		if !exists {
			limiter = NewPerMinute(cl.config.RequestsPerMinute, cl.config.Burst)
			cl.limiters[key] = limiter
		}
		cl.mu.Unlock()
	}

	allowed, retryAfter := limiter.Reserve()
	if !allowed && cl.config.OnDrop != nil {
		cl.config.OnDrop()
	}
	return allowed, retryAfter
}

// ActiveClients returns the number of tracked clients.
func (cl *ClientLimiter) ActiveClients() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.limiters)
}

// cleanup forgets clients whose bucket has refilled and returns the
// remaining count.
func (cl *ClientLimiter) cleanup() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for key, limiter := range cl.limiters {
		if limiter.IsFull() {
			delete(cl.limiters, key)
		}
	}
	return len(cl.limiters)
}

func (cl *ClientLimiter) cleanupLoop() {
	ticker := time.NewTicker(cl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.stopCh:
			return
		case <-ticker.C:
			count := cl.cleanup()
			if cl.config.OnUpdate != nil {
				cl.config.OnUpdate(count)
			}
		}
	}
}

// Stop ends the cleanup loop. Safe to call multiple times.
func (cl *ClientLimiter) Stop() {
	cl.stopOnce.Do(func() { close(cl.stopCh) })
}
