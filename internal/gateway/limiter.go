package gateway

import (
	"sync"
	"time"
)

const (
	DefaultRateLimit  = 15
	DefaultRateWindow = time.Minute
)

// RateLimiter admits at most limit calls in any trailing window.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	calls  []time.Time
	now    func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RateLimiter{
		limit:  limit,
		window: window,
		calls:  make([]time.Time, 0, limit),
		now:    time.Now,
	}
}

// Allow records a call if the window has room. When it does not, the second
// result is how long until the oldest call leaves the window.
func (r *RateLimiter) Allow() (bool, time.Duration) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	if len(r.calls) >= r.limit {
		return false, r.calls[0].Add(r.window).Sub(now)
	}
	r.calls = append(r.calls, now)
	return true, 0
}

// Remaining returns how many calls the window currently admits.
func (r *RateLimiter) Remaining() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	return r.limit - len(r.calls)
}

func (r *RateLimiter) Limit() int            { return r.limit }
func (r *RateLimiter) Window() time.Duration { return r.window }

func (r *RateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	writeIdx := 0
	for _, t := range r.calls {
		if !t.Before(cutoff) {
			r.calls[writeIdx] = t
			writeIdx++
		}
	}
	r.calls = r.calls[:writeIdx]
}
