package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-clicks/internal/links"
)

const maxWatchRetries = 3

// appendScript pushes a click onto the link's list only while the link hash exists, so an
// append racing a delete either lands before it or reports the link missing.
var appendScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("RPUSH", KEYS[2], ARGV[1])
return 1
`)

// RedisStore is a Redis implementation of links.Repository, links.ClickLog and links.Owners.
//
// Layout:
//   - link:{id}            hash of link attributes
//   - link:{id}:clicks     list of JSON click events, appended with RPUSH
//   - links                sorted set of all ids scored by creation time
//   - owner:{id}:links     sorted set of an owner's link ids
//   - owners               set of registered owner ids
type RedisStore struct {
	client    *redis.Client
	prefix    string
	indexKey  string
	ownersKey string
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:    client,
		prefix:    "link:",
		indexKey:  "links",
		ownersKey: "owners",
	}
}

func (r *RedisStore) linkKey(id links.ID) string {
	return r.prefix + string(id)
}

func (r *RedisStore) clicksKey(id links.ID) string {
	return r.prefix + string(id) + ":clicks"
}

func (r *RedisStore) ownerLinksKey(owner links.OwnerID) string {
	return "owner:" + string(owner) + ":links"
}

func (r *RedisStore) Create(ctx context.Context, link *links.Link) error {
	ok, err := r.Exists(ctx, link.OwnerID)
	if err != nil {
		return err
	}

	if !ok {
		return links.ErrOwnerNotFound
	}

	fields, err := linkFields(link)
	if err != nil {
		return err
	}

	score := float64(link.CreatedAt.UnixNano())

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.linkKey(link.ID), fields)
		pipe.ZAdd(ctx, r.indexKey, redis.Z{Score: score, Member: string(link.ID)})
		pipe.ZAdd(ctx, r.ownerLinksKey(link.OwnerID), redis.Z{Score: score, Member: string(link.ID)})

		return nil
	})

	return err
}

func (r *RedisStore) Get(ctx context.Context, id links.ID) (*links.Link, error) {
	result, err := r.client.HGetAll(ctx, r.linkKey(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, links.ErrLinkNotFound
	}

	return parseLink(result)
}

// Update applies the patch inside WATCH/MULTI on the link hash, retrying on conflicts.
func (r *RedisStore) Update(ctx context.Context, id links.ID, patch links.Patch) (*links.Link, error) {
	key := r.linkKey(id)

	var updated *links.Link

	txf := func(tx *redis.Tx) error {
		result, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}

		if len(result) == 0 {
			return links.ErrLinkNotFound
		}

		link, err := parseLink(result)
		if err != nil {
			return err
		}

		patch.Apply(link)

		fields, err := linkFields(link)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)

			return nil
		})
		if err == nil {
			updated = link
		}

		return err
	}

	if err := r.watch(ctx, txf, key); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the link hash, its click list and its index entries in one MULTI.
func (r *RedisStore) Delete(ctx context.Context, id links.ID) error {
	key := r.linkKey(id)

	txf := func(tx *redis.Tx) error {
		owner, err := tx.HGet(ctx, key, "owner_id").Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return links.ErrLinkNotFound
			}

			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, r.clicksKey(id))
			pipe.ZRem(ctx, r.indexKey, string(id))
			pipe.ZRem(ctx, r.ownerLinksKey(links.OwnerID(owner)), string(id))

			return nil
		})

		return err
	}

	return r.watch(ctx, txf, key)
}

func (r *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, key string) error {
	var err error

	for range maxWatchRetries {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return err
}

func (r *RedisStore) List(ctx context.Context) ([]links.Link, error) {
	return r.listIndex(ctx, r.indexKey)
}

func (r *RedisStore) ListByOwner(ctx context.Context, owner links.OwnerID) ([]links.Link, error) {
	return r.listIndex(ctx, r.ownerLinksKey(owner))
}

func (r *RedisStore) listIndex(ctx context.Context, indexKey string) ([]links.Link, error) {
	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.linkKey(links.ID(id)))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]links.Link, 0, len(ids))

	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}

		link, err := parseLink(fields)
		if err != nil {
			return nil, err
		}

		result = append(result, *link)
	}

	return result, nil
}

// Append pushes the event with a server-side script: one RPUSH, never a rewrite of the list.
func (r *RedisStore) Append(ctx context.Context, id links.ID, event links.ClickEvent) error {
	if event.InsertedAt.IsZero() {
		event.InsertedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	appended, err := appendScript.Run(ctx, r.client, []string{r.linkKey(id), r.clicksKey(id)}, payload).Int()
	if err != nil {
		return err
	}

	if appended == 0 {
		return links.ErrLinkNotFound
	}

	return nil
}

// ReadAll reads existence and the click list in one MULTI so both come from the same state.
func (r *RedisStore) ReadAll(ctx context.Context, id links.ID) ([]links.ClickEvent, error) {
	var (
		exists *redis.IntCmd
		raw    *redis.StringSliceCmd
	)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		exists = pipe.Exists(ctx, r.linkKey(id))
		raw = pipe.LRange(ctx, r.clicksKey(id), 0, -1)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if exists.Val() == 0 {
		return nil, links.ErrLinkNotFound
	}

	events := make([]links.ClickEvent, 0, len(raw.Val()))

	for _, item := range raw.Val() {
		var e links.ClickEvent
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, err
		}

		events = append(events, e)
	}

	return events, nil
}

func (r *RedisStore) Register(ctx context.Context, owner links.OwnerID) error {
	return r.client.SAdd(ctx, r.ownersKey, string(owner)).Err()
}

func (r *RedisStore) Exists(ctx context.Context, owner links.OwnerID) (bool, error) {
	return r.client.SIsMember(ctx, r.ownersKey, string(owner)).Result()
}

func linkFields(link *links.Link) (map[string]any, error) {
	targetValues, err := json.Marshal(nonNil(link.TargetValues))
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id":                string(link.ID),
		"owner_id":          string(link.OwnerID),
		"original_url":      link.OriginalURL,
		"target_param_name": link.TargetParamName,
		"target_values":     string(targetValues),
		"created_at":        link.CreatedAt.UnixNano(),
	}, nil
}

func parseLink(fields map[string]string) (*links.Link, error) {
	link := &links.Link{
		ID:              links.ID(fields["id"]),
		OwnerID:         links.OwnerID(fields["owner_id"]),
		OriginalURL:     fields["original_url"],
		TargetParamName: fields["target_param_name"],
	}

	if raw := fields["target_values"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &link.TargetValues); err != nil {
			return nil, err
		}
	}

	if ts, ok := fields["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			link.CreatedAt = time.Unix(0, nanos).UTC()
		}
	}

	return link, nil
}

// Compile-time checks.
var (
	_ links.Repository = (*RedisStore)(nil)
	_ links.ClickLog   = (*RedisStore)(nil)
	_ links.Owners     = (*RedisStore)(nil)
)
