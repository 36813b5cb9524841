// File: utils/cache.go
package utils

import (
	"context"
	"errors"
	"log"
	"time"

	"mentorly/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	// CacheClient is the generic cache client, also used for short-lived locks.
	CacheClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// ErrLockHeld is returned when another worker owns the lock.
var ErrLockHeld = errors.New("lock is held by another request")

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLocker hands out short-lived SET NX locks.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

// Acquire takes the lock for key or returns ErrLockHeld. The returned func releases it.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	fullKey := l.prefix + key
	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.client, []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
			GetLogger().Sugar().Warnf("failed to release lock %s: %v", fullKey, err)
		}
	}, nil
}
