package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ KeyValue = (*RedisStore)(nil)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisStore KeyValue sobre Redis; permite compartir el respaldo entre procesos.
type RedisStore struct {
	store cmdable
	raw   *redis.Client
}

// NewRedisStore conecta con la URL indicada (redis://...) y verifica con PING.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{store: raw, raw: raw}, nil
}

func (s *RedisStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	if err := s.store.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	if err := s.store.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}
