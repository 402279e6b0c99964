package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the token under prefix+key with no expiry.
type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, prefix, key string) *Redis {
	return &Redis{rdb: rdb, key: prefix + key}
}

func (r *Redis) Get(ctx context.Context) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, value string) error {
	if value == "" {
		return ErrEmptyValue
	}
	if err := r.rdb.Set(ctx, r.key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
