package attendance

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "asistencias:view:"

// RedisViewCache caches serialized enriched views in Redis. Failures are
// logged and treated as misses; the cache never fails an operation.
type RedisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewCache creates a view cache with the given entry TTL.
func NewRedisViewCache(client *redis.Client, ttl time.Duration) *RedisViewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisViewCache{client: client, ttl: ttl}
}

// Get returns a cached view when present.
func (c *RedisViewCache) Get(ctx context.Context, id string) (*View, bool) {
	data, err := c.client.Get(ctx, viewKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("view cache get %s: %v", id, err)
		}
		return nil, false
	}
	var view View
	if err := json.Unmarshal(data, &view); err != nil {
		log.Printf("view cache decode %s: %v", id, err)
		return nil, false
	}
	return &view, true
}

// Set stores a view.
func (c *RedisViewCache) Set(ctx context.Context, id string, v *View) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("view cache encode %s: %v", id, err)
		return
	}
	if err := c.client.Set(ctx, viewKeyPrefix+id, data, c.ttl).Err(); err != nil {
		log.Printf("view cache set %s: %v", id, err)
	}
}

// Del drops a view.
func (c *RedisViewCache) Del(ctx context.Context, id string) {
	if err := c.client.Del(ctx, viewKeyPrefix+id).Err(); err != nil {
		log.Printf("view cache del %s: %v", id, err)
	}
}
