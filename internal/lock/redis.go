package lock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker backed by per-key Redis SET NX entries.
// The TTL bounds how long a crashed holder can keep a resource blocked.
func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisLocker) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	token := uuid.NewString()

	var held []string
	for _, key := range sorted {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.releaseAll(ctx, held, token)
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if !ok {
			l.releaseAll(ctx, held, token)
			return ErrNotAcquired
		}
		held = append(held, key)
	}

	defer l.releaseAll(ctx, held, token)

	fnCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(fnCtx)
}

// unlockScript deletes a lock key only if it still holds our token, so an
// expired lock reacquired by someone else is never released from under
// them.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisLocker) releaseAll(ctx context.Context, keys []string, token string) {
	// Release in reverse acquisition order. A failed release is not fatal;
	// the TTL reclaims the key.
	for i := len(keys) - 1; i >= 0; i-- {
		_, _ = unlockScript.Run(ctx, l.client, []string{keys[i]}, token).Result()
	}
}
