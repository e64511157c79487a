package ratelimit

import (
	"context"
	"time"
)

// Store keeps the request timestamps of each key.
type Store interface {
	// Record records a request and returns the number of requests for key within the last window,
	// the new one included. Entries older than window are pruned.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
