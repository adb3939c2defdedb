package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "recepti:imgpath:"

// RedisCache shares resolved paths between API replicas.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCache creates a Redis backed PathCache. An empty prefix selects
// the default key namespace.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *RedisCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, log: log}
}

// Get treats any Redis failure as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("path cache get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.log.Warn("path cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Clear removes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 256).Iterator()
	batch := make([]string, 0, 256)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			c.del(ctx, batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("path cache scan failed", zap.Error(err))
	}
	if len(batch) > 0 {
		c.del(ctx, batch)
	}
}

func (c *RedisCache) del(ctx context.Context, keys []string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("path cache clear failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}
