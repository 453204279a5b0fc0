package mocks

import (
	"context"

	"book-order-service/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockSettingRepository struct {
	mock.Mock
}

type MockSettingCache struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

func (m *MockBroadcaster) Broadcast(url *string) int {
	args := m.Called(url)
	return args.Int(0)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error {
	args := m.Called(ctx, order, expected)
	return args.Error(0)
}

func (m *MockSettingRepository) GetSettings(ctx context.Context) (*domain.AdminSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminSetting), args.Error(1)
}

func (m *MockSettingRepository) SaveSettings(ctx context.Context, setting *domain.AdminSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockSettingCache) Get(ctx context.Context) (*domain.AdminSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminSetting), args.Error(1)
}

func (m *MockSettingCache) Set(ctx context.Context, setting *domain.AdminSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockSettingCache) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
