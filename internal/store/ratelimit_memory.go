package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore keeps request timestamps per key in memory.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	timestamps := s.requests[key]

	// timestamps are ascending, so everything before the first live entry has expired
	first := len(timestamps)
	for i, ts := range timestamps {
		if ts.After(cutoff) {
			first = i

			break
		}
	}

	live := append(timestamps[first:len(timestamps):len(timestamps)], now)
	s.requests[key] = live

	return int64(len(live)), nil
}
