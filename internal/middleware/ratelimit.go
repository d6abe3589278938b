// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// sweepInterval is how often idle clients are dropped.
const sweepInterval = 5 * time.Minute

// RateLimiter allows each client IP at most limit requests within any
// sliding window. It guards the mutating API routes.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time // per client, oldest first

	stopCh  chan struct{}
	stopped sync.Once
}

// NewRateLimiter creates a limiter and starts its background sweeper.
// Call Stop when done.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(limit, window, time.Now)
	go rl.sweepLoop()
	return rl
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    now,
		hits:   make(map[string][]time.Time),
		stopCh: make(chan struct{}),
	}
}

// Stop terminates the sweeper. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopped.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// recent drops timestamps at or before cutoff. hits is sorted oldest first.
func recent(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// allow records a request from key if it fits in the window. Otherwise it
// reports how long until the oldest request leaves the window.
func (rl *RateLimiter) allow(key string) (ok bool, retry time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := recent(rl.hits[key], now.Add(-rl.window))
	if len(hits) >= rl.limit {
		rl.hits[key] = hits
		return false, hits[0].Add(rl.window).Sub(now)
	}
	rl.hits[key] = append(hits, now)
	return true, 0
}

// sweep forgets clients with no request inside the window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, hits := range rl.hits {
		if len(recent(hits, cutoff)) == 0 {
			delete(rl.hits, key)
		}
	}
}

// clients returns the number of tracked client keys.
func (rl *RateLimiter) clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

// Middleware rate-limits by client IP. Rejected requests get a 429
// envelope and a Retry-After header in whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(clientIP(r))
		if !ok {
			secs := max(int(math.Ceil(retry.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			fail(w, http.StatusTooManyRequests, "Too many requests. Try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, preferring the leftmost
// X-Forwarded-For entry, then X-Real-IP, then the connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
