package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisTokenBlacklist struct {
	redis *redis.Client
}

func NewRedisTokenBlacklist(redisClient *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{redis: redisClient}
}

func blacklistKey(jti string) string {
	return "token:blacklist:" + jti
}

func (r *RedisTokenBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to revoke.
		return nil
	}
	return r.redis.Set(ctx, blacklistKey(jti), 1, ttl).Err()
}

func (r *RedisTokenBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	err := r.redis.Get(ctx, blacklistKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
