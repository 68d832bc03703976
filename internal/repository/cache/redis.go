package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brunomoyse/tsb-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient создаёт клиента Redis и проверяет соединение
// клиент содержит собственный пул соединений и разделяется всеми запросами
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	const op = "repository.cache.redis.NewRedisClient"

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	return client, nil
}

// RedisStore — хранилище кэша поверх Redis (GET / SET EX)
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore оборачивает готовый клиент
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get возвращает сохранённые байты или ErrCacheMiss
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "repository.cache.redis.Get"

	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// Set записывает значение целиком одной командой SET с TTL
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const op = "repository.cache.redis.Set"

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
