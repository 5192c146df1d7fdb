package service

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/eventsvc/config/modules"
	"go.uber.org/zap"
)

// Locker hands out named mutexes. unlock must be called once the guarded
// work is done.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// RedisLocker is a Locker backed by redsync, shared by every node using the
// same redis.
type RedisLocker struct {
	rs    *redsync.Redsync
	ttl   time.Duration
	tries int
}

func NewRedisLocker(client *redis.Client, cfg modules.LockConfig) *RedisLocker {
	return &RedisLocker{
		rs:    redsync.New(goredis.NewPool(client)),
		ttl:   time.Duration(cfg.TTL) * time.Second,
		tries: cfg.Tries,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(key, redsync.WithExpiry(l.ttl), redsync.WithTries(l.tries))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	return func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			zap.S().Warnf("failed to release lock %s: %v", key, err)
		}
	}, nil
}
