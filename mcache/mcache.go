package mcache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/webhookx-io/eventsvc/pkg/cache"
	"github.com/webhookx-io/eventsvc/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultL1Size = 1000
	DefaultL1TTL  = time.Second * 10
	DefaultL2TTL  = time.Second * 60
)

// shared instance
var globalMcache atomic.Pointer[MCache]

func Set(mcache *MCache) {
	globalMcache.Store(mcache)
}

func Get() *MCache {
	return globalMcache.Load()
}

// MCache is multiple levels cache. L2 is optional.
type MCache struct {
	group singleflight.Group
	l1    *expirable.LRU[string, any]
	l2    cache.Cache
	l2TTL time.Duration

	metrics *metrics.Metrics
}

type Options struct {
	L1Size  int
	L1TTL   time.Duration
	L2      cache.Cache
	L2TTL   time.Duration
	Metrics *metrics.Metrics
}

func NewMCache(opts *Options) *MCache {
	size := opts.L1Size
	if size <= 0 {
		size = DefaultL1Size
	}
	l1TTL := opts.L1TTL
	if l1TTL <= 0 {
		l1TTL = DefaultL1TTL
	}
	l2TTL := opts.L2TTL
	if l2TTL <= 0 {
		l2TTL = DefaultL2TTL
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewDiscard()
	}
	return &MCache{
		l1:      expirable.NewLRU[string, any](size, nil, l1TTL),
		l2:      opts.L2,
		l2TTL:   l2TTL,
		metrics: m,
	}
}

func (c *MCache) InvalidateL1(ctx context.Context, key string) error {
	c.l1.Remove(key)
	return nil
}

func (c *MCache) InvalidateL2(ctx context.Context, key string) error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Remove(ctx, key)
}

func (c *MCache) Invalidate(ctx context.Context, key string) error {
	zap.S().Debugf("invalidating cache %s", key)
	if err := c.InvalidateL2(ctx, key); err != nil {
		return err
	}
	return c.InvalidateL1(ctx, key)
}

// Invalidate removes key from the shared instance, if one is set.
func Invalidate(ctx context.Context, key string) error {
	mcache := globalMcache.Load()
	if mcache == nil {
		return nil
	}
	return mcache.Invalidate(ctx, key)
}

type Callback[T any] func(ctx context.Context, id string) (*T, error)

type LoadOptions struct {
	DisableLRU bool
}

var defaultOpts LoadOptions

// Load looks key up in L1, then L2, then calls cb. Concurrent loads of the
// same key share one callback. Without a shared instance cb is called directly.
func Load[T any](ctx context.Context, key string, opts *LoadOptions, cb Callback[T], id string) (*T, error) {
	mcache := globalMcache.Load()
	if mcache == nil {
		return cb(ctx, id)
	}
	if opts == nil {
		opts = &defaultOpts
	}

	if !opts.DisableLRU {
		if v, ok := mcache.l1.Get(key); ok {
			mcache.metrics.CacheHitCounter.With("level", "l1").Add(1)
			return v.(*T), nil
		}
	}

	if mcache.l2 != nil {
		value := new(T)
		exist, err := mcache.l2.Get(ctx, key, value)
		if err != nil {
			return nil, err
		}
		if exist {
			mcache.metrics.CacheHitCounter.With("level", "l2").Add(1)
			if !opts.DisableLRU {
				mcache.l1.Add(key, value)
			}
			return value, nil
		}
	}

	mcache.metrics.CacheMissCounter.Add(1)
	v, err, _ := mcache.group.Do(key, func() (interface{}, error) {
		value, err := cb(ctx, id)
		if err != nil || value == nil {
			return value, err
		}
		if mcache.l2 != nil {
			if err := mcache.l2.Put(ctx, key, value, mcache.l2TTL); err != nil {
				return nil, err
			}
		}
		if !opts.DisableLRU {
			mcache.l1.Add(key, value)
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}
