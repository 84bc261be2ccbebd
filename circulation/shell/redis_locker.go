package shell

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL     = 5 * time.Second
	defaultLockPoll    = 5 * time.Millisecond
	defaultLockMaxPoll = 100 * time.Millisecond
	redisLockKeyPrefix = "lock:"
)

// releaseScript deletes the key only if it still holds our token, so an expired lock taken over by
// another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes operations across processes that share a Redis.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisLockerOption configures a RedisLocker.
type RedisLockerOption func(*RedisLocker)

// WithLockTTL sets how long a lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// NewRedisLocker creates a locker on top of client.
func NewRedisLocker(client *redis.Client, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{client: client, ttl: defaultLockTTL}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Lock polls SET NX PX with a random token until it wins or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := redisLockKeyPrefix + key
	token := uuid.NewString()
	wait := defaultLockPoll

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Join(ErrLockNotAcquired, err)
		}

		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
			}, nil
		}

		select {
		case <-time.After(wait):
			wait = min(wait*2, defaultLockMaxPoll)
		case <-ctx.Done():
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		}
	}
}
