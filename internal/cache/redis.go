package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"book-order-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const settingKey = "admin:settings"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context) (*domain.AdminSetting, error) {
	data, err := r.client.Get(ctx, settingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var setting domain.AdminSetting
	if err := json.Unmarshal(data, &setting); err != nil {
		return nil, fmt.Errorf("unmarshal setting failed: %w", err)
	}
	return &setting, nil
}

func (r *RedisCache) Set(ctx context.Context, setting *domain.AdminSetting) error {
	data, err := json.Marshal(setting)
	if err != nil {
		return fmt.Errorf("marshal setting failed: %w", err)
	}

	if err := r.client.Set(ctx, settingKey, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, settingKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
