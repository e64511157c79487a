//go:build integration

package store_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-clicks/internal/links"
	"github.com/serroba/link-clicks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return client
}

func TestRedisStoreIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	s := store.NewRedisStore(client)

	owner := links.OwnerID(uuid.NewString())
	require.NoError(t, s.Register(ctx, owner))

	newLink := func(t *testing.T) *links.Link {
		t.Helper()

		link := &links.Link{
			ID:              links.ID("rd" + uuid.NewString()[:8]),
			OwnerID:         owner,
			OriginalURL:     "https://example.com",
			TargetParamName: "src",
			CreatedAt:       time.Now().UTC(),
		}
		require.NoError(t, s.Create(ctx, link))

		t.Cleanup(func() { _ = s.Delete(ctx, link.ID) })

		return link
	}

	t.Run("create and get", func(t *testing.T) {
		link := newLink(t)

		got, err := s.Get(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.Equal(t, "src", got.TargetParamName)
	})

	t.Run("get non-existent returns ErrLinkNotFound", func(t *testing.T) {
		got, err := s.Get(ctx, "rdnonexistent")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, links.ErrLinkNotFound)
	})

	t.Run("update patches attributes", func(t *testing.T) {
		link := newLink(t)
		name := "utm_source"

		got, err := s.Update(ctx, link.ID, links.Patch{TargetParamName: &name})
		require.NoError(t, err)
		assert.Equal(t, name, got.TargetParamName)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
	})

	t.Run("concurrent appends are all retained", func(t *testing.T) {
		link := newLink(t)
		const n = 100

		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.Append(ctx, link.ID, links.ClickEvent{
					IPAddress:        "10.0.0.1",
					TargetParamValue: fmt.Sprintf("v%d", i),
				}))
			}()
		}
		wg.Wait()

		events, err := s.ReadAll(ctx, link.ID)
		require.NoError(t, err)
		assert.Len(t, events, n)
	})

	t.Run("append to missing link returns ErrLinkNotFound and writes nothing", func(t *testing.T) {
		err := s.Append(ctx, "rdmissing", links.ClickEvent{IPAddress: "1.1.1.1"})

		assert.ErrorIs(t, err, links.ErrLinkNotFound)
		assert.Zero(t, client.Exists(ctx, "link:rdmissing:clicks").Val())
	})

	t.Run("delete removes link, clicks and index entries", func(t *testing.T) {
		link := newLink(t)
		require.NoError(t, s.Append(ctx, link.ID, links.ClickEvent{IPAddress: "1.1.1.1"}))

		require.NoError(t, s.Delete(ctx, link.ID))

		_, err := s.ReadAll(ctx, link.ID)
		assert.ErrorIs(t, err, links.ErrLinkNotFound)

		owned, err := s.ListByOwner(ctx, owner)
		require.NoError(t, err)
		for _, l := range owned {
			assert.NotEqual(t, link.ID, l.ID)
		}

		assert.ErrorIs(t, s.Delete(ctx, link.ID), links.ErrLinkNotFound)
	})
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)

	backing := store.NewMemoryStore()
	owner := links.OwnerID(uuid.NewString())
	require.NoError(t, backing.Register(ctx, owner))

	cached := store.NewRedisCacheRepository(backing, client, time.Minute)

	link := &links.Link{
		ID:              links.ID("cache" + uuid.NewString()[:8]),
		OwnerID:         owner,
		OriginalURL:     "https://example.com",
		TargetParamName: "t",
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, cached.Create(ctx, link))
	t.Cleanup(func() { client.Del(ctx, "cache:link:"+string(link.ID)) })

	t.Run("serves lookups from cache", func(t *testing.T) {
		got, err := cached.Get(ctx, link.ID)

		require.NoError(t, err)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.Equal(t, int64(1), client.Exists(ctx, "cache:link:"+string(link.ID)).Val())
	})

	t.Run("update evicts cached entry", func(t *testing.T) {
		url := "https://updated.example.com"

		_, err := cached.Update(ctx, link.ID, links.Patch{OriginalURL: &url})
		require.NoError(t, err)

		got, err := cached.Get(ctx, link.ID)
		require.NoError(t, err)
		assert.Equal(t, url, got.OriginalURL)
	})

	t.Run("delete evicts cached entry", func(t *testing.T) {
		require.NoError(t, cached.Delete(ctx, link.ID))

		_, err := cached.Get(ctx, link.ID)
		assert.ErrorIs(t, err, links.ErrLinkNotFound)
	})
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	s := store.NewRateLimitRedisStore(client)

	t.Run("counts requests within the window", func(t *testing.T) {
		key := "ratelimit:test:" + uuid.NewString()
		t.Cleanup(func() { client.Del(ctx, key) })

		for want := int64(1); want <= 3; want++ {
			count, err := s.Record(ctx, key, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, count)
		}

		ttl, err := client.PTTL(ctx, key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("forgets requests older than the window", func(t *testing.T) {
		key := "ratelimit:test:" + uuid.NewString()
		t.Cleanup(func() { client.Del(ctx, key) })

		_, err := s.Record(ctx, key, 50*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		count, err := s.Record(ctx, key, 50*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
