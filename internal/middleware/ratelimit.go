// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterEntry is the token bucket of a single client.
type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-player token bucket rate limiting. Requests
// from resolved players are keyed by account id, anonymous ones by IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	ttl     time.Duration
	stopCh  chan struct{}
}

// NewRateLimiter creates a limiter allowing rps requests per second with
// bursts of burst. It starts a background goroutine that forgets idle
// clients.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     10 * time.Minute,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup(time.Now())
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow checks whether the given key has a token available.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	e, ok := rl.clients[key]
	if !ok {
		e = &limiterEntry{l: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = e
	}
	e.lastSeen = time.Now()
	rl.mu.Unlock()

	return e.l.Allow()
}

// cleanup removes clients not seen within the TTL.
func (rl *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.ttl)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, e := range rl.clients {
		if e.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// Middleware returns an HTTP middleware that rate-limits by player, or by
// client IP for anonymous requests. Must run after Identify.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + clientIP(r)
		if u := PlayerFrom(r.Context()); u != nil {
			key = "user:" + u.ID
		}
		if !rl.allow(key) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
