package booking

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the key only while it still holds our value, so an
// expired lock taken over by another commit is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCommitLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCommitLock(client *redis.Client, ttl time.Duration) *RedisCommitLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCommitLock{client: client, ttl: ttl}
}

func (l *RedisCommitLock) Acquire(ctx context.Context, key string) (func(), bool, error) {
	owner := uuid.New().String()
	ok, err := l.client.SetNX(ctx, "lock:"+key, owner, l.ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{"lock:" + key}, owner).Err()
	}
	return release, true, nil
}
