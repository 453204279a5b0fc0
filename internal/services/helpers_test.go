package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"book-order-service/internal/domain"
	"book-order-service/internal/mocks"
	"book-order-service/internal/pricing"
	"book-order-service/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second

func validOrderInput() SubmitOrderInput {
	return SubmitOrderInput{
		FirstName:        "Wanjiru",
		LastName:         "Kamau",
		Email:            "wanjiru@example.com",
		Phone:            "0712345678",
		Address:          "12 Moi Avenue",
		City:             "Nairobi",
		PostalCode:       "00100",
		DeliveryLocation: domain.ZoneNairobi,
		Edition:          domain.EditionPaperback,
		Quantity:         1,
	}
}

func createMockOrder(id string, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:               id,
		FirstName:        "Wanjiru",
		LastName:         "Kamau",
		Email:            "wanjiru@example.com",
		DeliveryLocation: domain.ZoneNairobi,
		Edition:          domain.EditionPaperback,
		Quantity:         1,
		BookAmount:       2500,
		DeliveryFee:      300,
		TotalAmount:      2800,
		Status:           status,
		CreatedAt:        time.Now(),
	}
}

func newTestOrderService(t *testing.T, repo repository.OrderRepository) (*OrderService, *mocks.MockPublisher) {
	t.Helper()
	prices, err := pricing.NewTable(pricing.TierIntroductory)
	require.NoError(t, err)

	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewOrderService(repo, prices, pub, testTimeout), pub
}

// memOrderRepo is an in-memory OrderRepository with the same conditional
// update semantics as the real stores.
type memOrderRepo struct {
	mu     sync.Mutex
	seq    int
	orders map[string]domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *memOrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o.ID = fmt.Sprintf("order-%d", r.seq)
	r.orders[o.ID] = *o
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *memOrderRepo) Update(_ context.Context, o *domain.Order, expected domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[o.ID]
	if !ok || cur.Status != expected {
		return repository.ErrStatusConflict
	}
	r.orders[o.ID] = *o
	return nil
}
