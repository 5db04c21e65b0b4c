package locker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "parkspot:lock:"

// compare-and-delete so a holder whose TTL lapsed cannot free a new owner's lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) TryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+key, token, ttl).Result()
}

func (s *RedisStore) Release(ctx context.Context, key, token string) error {
	err := releaseScript.Run(ctx, s.client, []string{s.prefix + key}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
