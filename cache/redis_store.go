package cache

import (
	"context"
	"time"

	errs "github.com/attendly/go-workforce-server/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore implements Store on a shared redis client. The client lifecycle
// (connect/close) is owned by the process entry point, not by this type.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	if err != nil {
		return "", errs.Dependency(err, "redis get "+key)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errs.Dependency(err, "redis set "+key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errs.Dependency(err, "redis del "+key)
	}
	return nil
}

// Increment bumps a fixed-window counter. The window starts when the first
// increment creates the key.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errs.Dependency(err, "redis incr "+key)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, errs.Dependency(err, "redis expire "+key)
		}
	}
	return count, nil
}
