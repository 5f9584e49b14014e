// Rate limiter for the command endpoints: one refilling token bucket per
// client IP.
package api

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter allows a burst of maxRate requests per client and refills
// the budget continuously over window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	maxRate int
	window  time.Duration
	now     func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time // last refill
}

// NewRateLimiter creates a rate limiter allowing maxRate requests per window.
func NewRateLimiter(maxRate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		maxRate: maxRate,
		window:  window,
		now:     time.Now,
	}
}

// RunCleanup drops idle buckets periodically until ctx is cancelled.
func (rl *RateLimiter) RunCleanup(ctx context.Context) {
	t := time.NewTicker(rl.window)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.cleanup()
		}
	}
}

// refill tops b up for the time elapsed since it was last seen. Callers
// hold mu.
func (rl *RateLimiter) refill(b *bucket, now time.Time) {
	earned := now.Sub(b.seen).Seconds() * float64(rl.maxRate) / rl.window.Seconds()
	b.tokens = math.Min(float64(rl.maxRate), b.tokens+earned)
	b.seen = now
}

// Allow spends one token for ip, reporting false when none is left.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: float64(rl.maxRate), seen: now}
		rl.buckets[ip] = b
	}
	rl.refill(b, now)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RetryAfter returns the whole seconds until ip has a token again.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		return 0
	}
	rl.refill(b, rl.now())
	if b.tokens >= 1 {
		return 0
	}
	return int(math.Ceil((1 - b.tokens) * rl.window.Seconds() / float64(rl.maxRate)))
}

// cleanup forgets clients whose bucket would be full again anyway.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, b := range rl.buckets {
		if now.Sub(b.seen) >= rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// Middleware returns 429 once a client exceeds its budget. It expects
// chi's RealIP middleware to have resolved the client address.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !rl.Allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter(ip)))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
