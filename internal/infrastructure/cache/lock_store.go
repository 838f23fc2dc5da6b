package cache

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/domain/repositories"
	"github.com/redis/go-redis/v9"
	"time"
)

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLockStore struct {
	client redis.UniversalClient
}

func NewRedisLockStore(client redis.UniversalClient) repositories.LockStore {
	return &RedisLockStore{client: client}
}

// TrySet is SET key value PX ttl NX.
func (s *RedisLockStore) TrySet(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisLockStore) Delete(ctx context.Context, key, value string) error {
	return releaseScript.Run(ctx, s.client, []string{key}, value).Err()
}
