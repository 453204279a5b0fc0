package services

import (
	"context"
	"errors"
	"log"
	"time"

	"book-order-service/internal/domain"
	rabbit "book-order-service/internal/infra/rabbitmq"
	"book-order-service/internal/pricing"
	"book-order-service/internal/repository"
)

const publishTimeout = 5 * time.Second

type OrderService struct {
	repo      repository.OrderRepository
	prices    *pricing.Table
	publisher rabbit.PublisherInterface
	timeout   time.Duration
	now       func() time.Time
}

func NewOrderService(r repository.OrderRepository, prices *pricing.Table, pub rabbit.PublisherInterface, storeTimeout time.Duration) *OrderService {
	return &OrderService{
		repo:      r,
		prices:    prices,
		publisher: pub,
		timeout:   storeTimeout,
		now:       time.Now,
	}
}

// Quote prices an order without persisting anything.
func (u *OrderService) Quote(edition domain.Edition, quantity int, zone domain.DeliveryZone) (pricing.Breakdown, error) {
	return u.prices.Compute(edition, quantity, zone)
}

// SubmitOrder validates the customer details, prices the order and stores it
// as pending. Invalid input is reported as a *ValidationError before any
// store call.
func (u *OrderService) SubmitOrder(ctx context.Context, in SubmitOrderInput) (*domain.Order, error) {
	in = in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	totals, err := u.prices.Compute(in.Edition, in.Quantity, in.DeliveryLocation)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	order := &domain.Order{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		Address:          in.Address,
		City:             in.City,
		PostalCode:       in.PostalCode,
		DeliveryLocation: in.DeliveryLocation,
		Edition:          in.Edition,
		Quantity:         in.Quantity,
		BookAmount:       totals.BookAmount,
		DeliveryFee:      totals.DeliveryFee,
		TotalAmount:      totals.Total,
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	sctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	if err := u.repo.Save(sctx, order); err != nil {
		return nil, storageError("submit order", err)
	}

	go u.publish(domain.EventOrderCreated, domain.NewOrderCreatedEvent(order))

	return order, nil
}

func (u *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrOrderNotFound
	}

	sctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	o, err := u.repo.FindByID(sctx, id)
	if err != nil {
		return nil, storageError("get order", err)
	}

	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ConfirmPayment records the customer's M-Pesa reference. Only a pending
// order can be confirmed; a second confirmation, including one that loses a
// race against a concurrent request, gets ErrPaymentAlreadyConfirmed.
func (u *OrderService) ConfirmPayment(ctx context.Context, id string, in PaymentInput) (*domain.Order, error) {
	in = in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	order, err := u.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.ConfirmPayment(in.MpesaCode, in.MpesaPhone, u.now().UTC()); err != nil {
		return nil, ErrPaymentAlreadyConfirmed
	}

	sctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	if err := u.repo.Update(sctx, order, from); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrPaymentAlreadyConfirmed
		}
		return nil, storageError("confirm payment", err)
	}

	log.Printf("Order %s payment confirmed", order.ID)
	go u.publish(domain.EventOrderPaymentConfirmed, domain.NewOrderStatusEvent(order, from))

	return order, nil
}

// AdvanceStatus moves a paid order to shipped, then completed.
func (u *OrderService) AdvanceStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	if !to.Valid() {
		return nil, ErrInvalidTransition
	}

	order, err := u.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.Advance(to, u.now().UTC()); err != nil {
		return nil, err
	}

	sctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	if err := u.repo.Update(sctx, order, from); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, storageError("advance order", err)
	}

	log.Printf("Order %s moved from %s to %s", order.ID, from, to)
	go u.publish(domain.EventOrderStatusChanged, domain.NewOrderStatusEvent(order, from))

	return order, nil
}

func (u *OrderService) publish(pattern string, evt any) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := u.publisher.Publish(ctx, pattern, evt); err != nil {
		log.Printf("Failed to publish %s event: %v", pattern, err)
		return
	}
	log.Printf("Successfully published %s event", pattern)
}
