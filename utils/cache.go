// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"hotelbook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient holds read-side projections (hotel listing views).
	CacheClient *redis.Client
	// LockClient holds short-lived commit locks keyed by payment intent.
	LockClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func pingRedis(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitRedis initializes every redis client used by the service.
func InitRedis() {
	GetCacheClient()
	GetLockClient()
}

// GetCacheClient returns the projection cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
		pingRedis(CacheClient, "Cache")
	}
	return CacheClient
}

// GetLockClient returns the commit lock client.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		LockClient = newRedisClient(config.AppConfig.RedisLockDB)
		pingRedis(LockClient, "Lock")
	}
	return LockClient
}

// CloseRedis closes any initialized redis clients.
func CloseRedis() {
	for _, c := range []*redis.Client{CacheClient, LockClient} {
		if c != nil {
			_ = c.Close()
		}
	}
}
