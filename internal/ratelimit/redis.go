package ratelimit

import (
	"context"
	"fmt"

	"shareit/internal/config"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "shareit:ratelimit:"

// RedisStore is a fixed-window counter shared by every gateway instance.
type RedisStore struct {
	client *redis.Client
	budget Budget
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func NewRedisStore(client *redis.Client, budget Budget) *RedisStore {
	return &RedisStore{client: client, budget: budget}
}

// Allow increments the caller's counter and starts its window on the first hit.
func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	if s.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := redisKeyPrefix + key
	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, s.budget.Window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(s.budget.Requests), nil
}
