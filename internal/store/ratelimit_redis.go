package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitRedisStore keeps request timestamps in one sorted set per key, scored by unix
// milliseconds, so every server instance shares the same counters.
type RateLimitRedisStore struct {
	client *redis.Client
}

// NewRateLimitRedisStore creates a Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{client: client}
}

func (s *RateLimitRedisStore) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-window).UnixMilli()

	var card *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
		})
		card = pipe.ZCard(ctx, key)
		pipe.PExpire(ctx, key, window)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store.RateLimitRedisStore.Record: %w", err)
	}

	return card.Val(), nil
}
