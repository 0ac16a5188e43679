package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lockKeyPrefix = "lock:"

// 仅当值与持有者令牌一致时才删除，避免误删他人持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockRepository is a best-effort Redis mutex keyed by name.
type LockRepository struct {
	Redis *redis.Client
}

func NewLockRepository(rdb *redis.Client) *LockRepository {
	return &LockRepository{Redis: rdb}
}

// Acquire tries to take the named lock for ttl. It returns ok=false when the
// lock is held by someone else. The returned release func is safe to call
// once the caller is done.
func (r *LockRepository) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := lockKeyPrefix + name
	token := uuid.New().String()

	ok, err := r.Redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}

	release := func() {
		releaseScript.Run(context.Background(), r.Redis, []string{key}, token)
	}
	return release, true, nil
}
