package queue

import (
	"context"
	"fmt"
	"gamification_hub/internal/common"
	"gamification_hub/internal/platform/logger"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our value.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a per-key mutual exclusion lock shared by every API instance
// pointing at the same Redis. Keys are namespaced with Prefix.
type RedisLocker struct {
	rdb        *redis.Client
	prefix     string
	ttl        time.Duration
	wait       time.Duration
	retryDelay time.Duration
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		rdb:        rdb,
		prefix:     prefix,
		ttl:        ttl,
		wait:       wait,
		retryDelay: 50 * time.Millisecond,
	}
}

// Lock blocks until the lock for key is held, the wait budget is spent or ctx
// is done. The returned func releases the lock.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := l.prefix + key
	lockValue := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, lockValue, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("RedisLocker.Lock %s: %v: %w", lockKey, err, common.ErrServiceUnavailable)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("RedisLocker.Lock %s: %w", lockKey, common.ErrLockNotAcquired)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	return func() {
		// Release with a fresh context so a cancelled request still frees the key.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(releaseCtx, l.rdb, []string{lockKey}, lockValue).Int64()
		log := logger.FromContext(ctx)
		if err != nil {
			log.Error("Failed to release lock", "key", lockKey, "error", err)
		} else if deleted == 0 {
			log.Warn("Lock expired before release", "key", lockKey)
		}
	}, nil
}
