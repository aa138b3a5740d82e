// Package ratelimit implements token bucket rate limiting for HTTP handlers.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter manages one token bucket per key (typically a client IP).
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	stop    chan struct{}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing requests tokens per window, with
// burst capacity equal to the per-window allowance.
func NewLimiter(requests int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()
	return b.limiter.Allow()
}

// RetryAfter returns how long a rejected caller should wait before retrying.
func (l *Limiter) RetryAfter() time.Duration {
	if l.rate <= 0 {
		return time.Second
	}
	return max(time.Duration(float64(time.Second)/float64(l.rate)), time.Second)
}

// Stop terminates the background cleanup goroutine.
func (l *Limiter) Stop() {
	close(l.stop)
}

// cleanupLoop evicts buckets not seen for an hour.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-time.Hour)
			l.mu.Lock()
			for key, b := range l.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
