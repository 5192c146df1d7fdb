package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/eventsvc/pkg/serializer"
)

// RedisCache is the L2 cache shared by every node using the same redis.
type RedisCache struct {
	client     *redis.Client
	serializer serializer.Serializer
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache returns a cache on client. s defaults to msgpack.
func NewRedisCache(client *redis.Client, s serializer.Serializer) *RedisCache {
	if s == nil {
		s = serializer.MsgPack
	}
	return &RedisCache{client: client, serializer: s}
}

// Put stores val under key. A nil val is not stored.
func (rc *RedisCache) Put(ctx context.Context, key string, val interface{}, expiration time.Duration) error {
	if val == nil {
		return nil
	}
	b, err := rc.serializer.Serialize(val)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, key, b, expiration).Err()
}

func (rc *RedisCache) Get(ctx context.Context, key string, val interface{}) (bool, error) {
	b, err := rc.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := rc.serializer.Deserialize(b, val); err != nil {
		return false, err
	}
	return true, nil
}

func (rc *RedisCache) Remove(ctx context.Context, key string) error {
	return rc.client.Del(ctx, key).Err()
}

func (rc *RedisCache) Exist(ctx context.Context, key string) (bool, error) {
	n, err := rc.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
