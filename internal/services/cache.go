package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// StatsCacheTTL bounds how stale the cached stats payloads can get.
const StatsCacheTTL = 5 * time.Minute

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// GetCachedStats returns a previously cached stats payload, if any.
// A nil client (redis not configured) is treated as a miss.
func GetCachedStats(ctx context.Context, key string) ([]byte, bool) {
	if RedisClient == nil {
		return nil, false
	}
	data, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCachedStats stores a stats payload with the standard TTL. Failures are
// ignored; the caller already has the computed payload.
func SetCachedStats(ctx context.Context, key string, data []byte) {
	if RedisClient == nil {
		return
	}
	RedisClient.Set(ctx, key, data, StatsCacheTTL)
}

// InvalidateStats drops cached payloads whose source data just changed.
func InvalidateStats(ctx context.Context, keys ...string) {
	if RedisClient == nil || len(keys) == 0 {
		return
	}
	RedisClient.Del(ctx, keys...)
}
