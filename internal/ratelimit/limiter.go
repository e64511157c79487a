package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request from key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, err error)
	Window() time.Duration
}

// SlidingWindowLimiter allows at most limit requests per key in any window-long interval.
type SlidingWindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter.
func NewSlidingWindowLimiter(store Store, limit int64, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Record(ctx, "ratelimit:"+key, l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}

// Window returns the length of the sliding window.
func (l *SlidingWindowLimiter) Window() time.Duration {
	return l.window
}
