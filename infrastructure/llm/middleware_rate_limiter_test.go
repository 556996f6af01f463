package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func TestRateLimitMiddleware_AllowsBurst(t *testing.T) {
	// Given a limiter with a burst of three
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(1), 3)(mock)

	// When making three immediate requests
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)
		require.NoError(t, err, "burst request should succeed")
	}

	// Then they should all pass without waiting for the sustained rate
	assert.Less(t, time.Since(start), 500*time.Millisecond, "burst should not be paced")
	assert.Equal(t, 3, mock.GetCallCount(), "all requests should reach the provider")
}

func TestRateLimitMiddleware_PacesSustainedRequests(t *testing.T) {
	// Given a limiter of 50 requests per second with no burst headroom
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(50), 1)(mock)

	// When making three sequential requests
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)
		require.NoError(t, err, "paced request should succeed")
	}
	elapsed := time.Since(start)

	// Then the second and third should each have waited ~20ms
	assert.GreaterOrEqual(t, elapsed, 35*time.Millisecond, "sustained requests should be paced")
}

func TestRateLimitMiddleware_CancelledWaitFails(t *testing.T) {
	// Given an exhausted limiter and a short caller deadline
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(0.1), 1)(mock)

	_, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)
	require.NoError(t, err, "first request should use the burst token")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// When the next request cannot get a token in time
	_, _, _, err = wrapped.DoRequest(ctx, "test prompt", nil)

	// Then the wait should fail instead of blocking past the deadline
	require.Error(t, err, "rate-limited wait should fail on deadline")
	assert.Contains(t, err.Error(), "rate limit", "error should name the rate limiter")
	assert.Equal(t, 1, mock.GetCallCount(), "the blocked request should never reach the provider")
}

func TestRateLimitMiddleware_SharedAcrossGoroutines(t *testing.T) {
	// Given one middleware instance used concurrently
	mock := NewMockCoreLLM()
	wrapped := RateLimitMiddleware(rate.Limit(1000), 10)(mock)

	// When several goroutines request at once
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, _, _, err := wrapped.DoRequest(context.Background(), "test prompt", nil)
			return err
		})
	}

	// Then all should succeed against the shared bucket
	require.NoError(t, g.Wait(), "concurrent requests should succeed")
	assert.Equal(t, 8, mock.GetCallCount(), "all requests should reach the provider")
}
