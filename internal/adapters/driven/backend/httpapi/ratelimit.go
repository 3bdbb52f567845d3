package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-Rate-Limit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-Rate-Limit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// defaultRetryAfter is used for a 429 without a usable Retry-After.
	defaultRetryAfter = time.Second
)

// RateLimiter combines a proactive token bucket with the pause the API
// asks for after a 429.
type RateLimiter struct {
	mu         sync.Mutex
	remaining  int
	pauseUntil time.Time
	bucket     *rate.Limiter
	now        func() time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst. perSecond <= 0 disables proactive throttling.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		remaining: -1,
		bucket:    rate.NewLimiter(limit, burst),
		now:       time.Now,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	pauseUntil := r.pauseUntil
	r.mu.Unlock()

	if wait := pauseUntil.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// Observe updates limiter state from a response. For a 429 it returns how
// long the API asked us to back off.
func (r *RateLimiter) Observe(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}

	var resetAt time.Time
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			resetAt = time.Unix(val, 0)
		}
	}

	if r.remaining == 0 && resetAt.After(r.now()) && resetAt.After(r.pauseUntil) {
		r.pauseUntil = resetAt
	}

	if resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}

	wait := defaultRetryAfter
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			wait = time.Duration(seconds) * time.Second
		} else if at, err := http.ParseTime(retryAfter); err == nil {
			wait = at.Sub(r.now())
		}
	} else if !resetAt.IsZero() {
		wait = resetAt.Sub(r.now())
	}
	if wait < 0 {
		wait = 0
	}
	if until := r.now().Add(wait); until.After(r.pauseUntil) {
		r.pauseUntil = until
	}
	return wait
}

// Remaining returns the last reported remaining quota, -1 if unknown.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// PausedUntil returns when the limiter will next let a request through.
func (r *RateLimiter) PausedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pauseUntil
}
