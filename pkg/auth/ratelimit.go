package auth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

// ErrTooManyRequests is returned by limiters when a caller exceeds its quota.
var ErrTooManyRequests = errors.New("rate limit exceeded")

// RateLimiter checks whether an authenticated request should be allowed.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// slidingWindow tracks request counts per key over one-minute windows.
type slidingWindow struct {
	rpm      int
	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

func (w *slidingWindow) allow(key string) error {
	if w.rpm <= 0 {
		return nil // no limit
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	c, ok := w.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		// New window.
		w.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > w.rpm {
		return ErrTooManyRequests
	}

	return nil
}

// InProcessLimiter is a simple sliding-window rate limiter that tracks
// request counts per user in memory.
type InProcessLimiter struct {
	window slidingWindow
}

// NewInProcessLimiter creates a rate limiter allowing rpm requests per user
// per minute. rpm <= 0 disables the limit.
func NewInProcessLimiter(rpm int) *InProcessLimiter {
	return &InProcessLimiter{
		window: slidingWindow{rpm: rpm, counters: make(map[string]*counter)},
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, identity *Identity) error {
	return l.window.allow(identity.UserID.String())
}

// IPLimiter is a sliding-window rate limiter keyed by client address. It
// guards anonymous credential endpoints (login, register) where no identity
// exists yet and each attempt is a password or email guess.
type IPLimiter struct {
	window slidingWindow
}

// NewIPLimiter creates a rate limiter allowing rpm requests per client
// address per minute. rpm <= 0 disables the limit.
func NewIPLimiter(rpm int) *IPLimiter {
	return &IPLimiter{
		window: slidingWindow{rpm: rpm, counters: make(map[string]*counter)},
	}
}

// Allow checks if a request from the address is within the rate limit.
func (l *IPLimiter) Allow(r *http.Request) error {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return l.window.allow(host)
}
