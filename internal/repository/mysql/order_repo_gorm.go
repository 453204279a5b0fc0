package mysql

import (
	"context"
	"errors"
	"log"

	"book-order-service/internal/domain"
	"book-order-service/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		log.Printf("Database save error: %v", result.Error)
		return result.Error
	}

	if result.RowsAffected == 0 {
		log.Printf("WARNING: order %s not inserted", order.ID)
		return errors.New("failed to insert order")
	}

	log.Printf("Order saved successfully with ID: %s", order.ID)
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

// Update writes the mutable order fields only while the stored status still
// equals expected.
func (r *orderRepo) Update(ctx context.Context, order *domain.Order, expected domain.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", order.ID, expected).
		Updates(map[string]any{
			"mpesa_code":  order.MpesaCode,
			"mpesa_phone": order.MpesaPhone,
			"status":      order.Status,
			"updated_at":  order.UpdatedAt,
		})
	if result.Error != nil {
		log.Printf("Update order %s error: %v", order.ID, result.Error)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return repository.ErrStatusConflict
	}
	return nil
}
