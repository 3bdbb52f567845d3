package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, headers map[string]string) *http.Response {
	resp := &http.Response{StatusCode: status, Header: http.Header{}}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestRateLimiter_UnlimitedDoesNotBlock(t *testing.T) {
	r := NewRateLimiter(0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	for i := 0; i < 100; i++ {
		require.NoError(t, r.Wait(ctx))
	}
	assert.Equal(t, -1, r.Remaining())
}

func TestRateLimiter_Observe(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tests := []struct {
		name      string
		resp      *http.Response
		wantWait  time.Duration
		wantPause time.Time
	}{
		{
			name: "ok response",
			resp: response(http.StatusOK, map[string]string{HeaderRateRemaining: "42"}),
		},
		{
			name:      "retry-after seconds",
			resp:      response(http.StatusTooManyRequests, map[string]string{HeaderRetryAfter: "3"}),
			wantWait:  3 * time.Second,
			wantPause: now.Add(3 * time.Second),
		},
		{
			name:      "retry-after date",
			resp:      response(http.StatusTooManyRequests, map[string]string{HeaderRetryAfter: now.Add(5 * time.Second).UTC().Format(http.TimeFormat)}),
			wantWait:  5 * time.Second,
			wantPause: now.Add(5 * time.Second),
		},
		{
			name:      "reset header without retry-after",
			resp:      response(http.StatusTooManyRequests, map[string]string{HeaderRateReset: strconv.FormatInt(now.Add(7*time.Second).Unix(), 10)}),
			wantWait:  7 * time.Second,
			wantPause: now.Add(7 * time.Second),
		},
		{
			name:      "429 without headers",
			resp:      response(http.StatusTooManyRequests, nil),
			wantWait:  defaultRetryAfter,
			wantPause: now.Add(defaultRetryAfter),
		},
		{
			name: "quota exhausted pauses until reset",
			resp: response(http.StatusOK, map[string]string{
				HeaderRateRemaining: "0",
				HeaderRateReset:     strconv.FormatInt(now.Add(9*time.Second).Unix(), 10),
			}),
			wantPause: now.Add(9 * time.Second),
		},
		{
			name: "nil response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRateLimiter(10, 1)
			r.now = func() time.Time { return now }

			wait := r.Observe(tt.resp)

			assert.Equal(t, tt.wantWait, wait)
			assert.True(t, tt.wantPause.Equal(r.PausedUntil()), "paused until %v, want %v", r.PausedUntil(), tt.wantPause)
		})
	}
}

func TestRateLimiter_WaitHonoursPause(t *testing.T) {
	r := NewRateLimiter(0, 0)
	r.Observe(response(http.StatusTooManyRequests, map[string]string{HeaderRetryAfter: "60"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}
