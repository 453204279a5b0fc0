package repository

import (
	"context"
	"errors"

	"book-order-service/internal/domain"
)

// ErrStatusConflict is returned by Update when the stored order no longer has
// the expected status.
var ErrStatusConflict = errors.New("order status changed concurrently")

// OrderRepository persists orders. FindByID returns (nil, nil) when no order
// exists for the id. Save assigns the order id.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error
}

// SettingRepository stores the single admin settings record. GetSettings
// returns (nil, nil) when nothing has been saved yet.
type SettingRepository interface {
	GetSettings(ctx context.Context) (*domain.AdminSetting, error)
	SaveSettings(ctx context.Context, setting *domain.AdminSetting) error
}
