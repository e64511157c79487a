package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-clicks/internal/links"
)

// RedisCacheRepository wraps a links.Repository with Redis caching for link lookups.
// Only attributes are cached; click logs are always read from the backing ClickLog.
type RedisCacheRepository struct {
	store  links.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(store links.Repository, client *redis.Client, ttl time.Duration) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "cache:link:",
		ttl:    ttl,
	}
}

// Create stores a link in the underlying store and updates the cache.
func (r *RedisCacheRepository) Create(ctx context.Context, link *links.Link) error {
	if err := r.store.Create(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

// Get retrieves a link by id, checking the cache first.
func (r *RedisCacheRepository) Get(ctx context.Context, id links.ID) (*links.Link, error) {
	if link, err := r.getFromCache(ctx, id); err == nil {
		return link, nil
	}

	link, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// Update updates the underlying store and drops the cached entry.
func (r *RedisCacheRepository) Update(ctx context.Context, id links.ID, patch links.Patch) (*links.Link, error) {
	link, err := r.store.Update(ctx, id, patch)

	r.evict(ctx, id)

	return link, err
}

// Delete deletes from the underlying store and drops the cached entry.
func (r *RedisCacheRepository) Delete(ctx context.Context, id links.ID) error {
	err := r.store.Delete(ctx, id)

	r.evict(ctx, id)

	return err
}

func (r *RedisCacheRepository) List(ctx context.Context) ([]links.Link, error) {
	return r.store.List(ctx)
}

func (r *RedisCacheRepository) ListByOwner(ctx context.Context, owner links.OwnerID) ([]links.Link, error) {
	return r.store.ListByOwner(ctx, owner)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, id links.ID) (*links.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, links.ErrLinkNotFound
	}

	return parseLink(result)
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *links.Link) {
	fields, err := linkFields(link)
	if err != nil {
		return
	}

	key := r.prefix + string(link.ID)
	pipe := r.client.Pipeline()

	pipe.HSet(ctx, key, fields)

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) evict(ctx context.Context, id links.ID) {
	_ = r.client.Del(ctx, r.prefix+string(id)).Err()
}

// Compile-time check.
var _ links.Repository = (*RedisCacheRepository)(nil)
