package cache

import (
	"context"
	"errors"

	"book-order-service/internal/domain"
)

type SettingCache interface {
	Get(ctx context.Context) (*domain.AdminSetting, error)
	Set(ctx context.Context, setting *domain.AdminSetting) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
