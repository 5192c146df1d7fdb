package cache

import (
	"context"
	"time"
)

// Cache is a shared key/value cache. Values are copied in and out through a
// serializer, so val passed to Get must be a pointer.
type Cache interface {
	Put(ctx context.Context, key string, val interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, val interface{}) (exist bool, err error)
	Remove(ctx context.Context, key string) error
	Exist(ctx context.Context, key string) (bool, error)
}
