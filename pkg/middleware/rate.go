// Package middleware provides the HTTP middleware of the stockpile API.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/stockpile/pkg/response"
)

// window is a fixed-window request count for one client.
type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter limits each client IP to max requests per period.
type RateLimiter struct {
	max    int
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*window
	nextSweep time.Time
}

func NewRateLimiter(max int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		period:  period,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

// Allow records one request from ip and reports whether it is within limit.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		for k, w := range l.clients {
			if now.After(w.resetAt) {
				delete(l.clients, k)
			}
		}
		l.nextSweep = now.Add(l.period)
	}

	w, ok := l.clients[ip]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.max
}

// Middleware rejects over-limit clients with 429. A non-positive max
// disables limiting.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	if l.max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr without port.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
