package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"app/internal/domain/model"
)

// RedisStore は単一キーにシリアライズ済みコレクションを保存する。
// リモートI/Oはすべてtimeoutで打ち切り、ハングさせない。
type RedisStore struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

func NewRedisStore(client *redis.Client, key string, timeout time.Duration) *RedisStore {
	return &RedisStore{
		client:  client,
		key:     key,
		timeout: timeout,
	}
}

// Ping は起動時の到達確認に使う。
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Load(ctx context.Context) ([]model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", s.key, err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		slog.Warn("stored value is not valid JSON, starting empty", "key", s.key, "err", err)
		return []model.Product{}, nil
	}
	return products, nil
}

// Save は同じキーへ無条件に上書きする。
func (s *RedisStore) Save(ctx context.Context, products []model.Product) error {
	if products == nil {
		products = []model.Product{}
	}

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", s.key, err)
	}
	return nil
}
