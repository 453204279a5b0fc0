package domain

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusPending          OrderStatus = "pending"
	StatusPaymentConfirmed OrderStatus = "payment_confirmed"
	StatusShipped          OrderStatus = "shipped"
	StatusCompleted        OrderStatus = "completed"
)

type Edition string

const (
	EditionPaperback Edition = "paperback"
	EditionHardback  Edition = "hardback"
)

// DeliveryZone is the shipping fee bucket. Nairobi is the local zone, Kenya
// covers deliveries anywhere else in the country.
type DeliveryZone string

const (
	ZoneNairobi DeliveryZone = "nairobi"
	ZoneKenya   DeliveryZone = "kenya"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// next holds the only status each status may advance to.
var next = map[OrderStatus]OrderStatus{
	StatusPending:          StatusPaymentConfirmed,
	StatusPaymentConfirmed: StatusShipped,
	StatusShipped:          StatusCompleted,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaymentConfirmed, StatusShipped, StatusCompleted:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	n, ok := next[s]
	return ok && n == to
}

// Paid reports whether the status implies a recorded payment.
func (s OrderStatus) Paid() bool {
	return s == StatusPaymentConfirmed || s == StatusShipped || s == StatusCompleted
}

func (e Edition) Valid() bool {
	return e == EditionPaperback || e == EditionHardback
}

func (z DeliveryZone) Valid() bool {
	return z == ZoneNairobi || z == ZoneKenya
}

type Order struct {
	ID               string       `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	FirstName        string       `json:"firstName" bson:"first_name" gorm:"size:100;not null"`
	LastName         string       `json:"lastName" bson:"last_name" gorm:"size:100;not null"`
	Email            string       `json:"email" bson:"email" gorm:"size:255;not null"`
	Phone            string       `json:"phone" bson:"phone" gorm:"size:32;not null"`
	Address          string       `json:"address" bson:"address" gorm:"size:255;not null"`
	City             string       `json:"city" bson:"city" gorm:"size:100;not null"`
	PostalCode       string       `json:"postalCode" bson:"postal_code" gorm:"size:20;not null"`
	DeliveryLocation DeliveryZone `json:"deliveryLocation" bson:"delivery_location" gorm:"type:enum('nairobi','kenya');not null"`
	Edition          Edition      `json:"edition" bson:"edition" gorm:"type:enum('paperback','hardback');not null"`
	Quantity         int          `json:"quantity" bson:"quantity" gorm:"not null"`
	BookAmount       int64        `json:"bookAmount" bson:"book_amount" gorm:"not null"`
	DeliveryFee      int64        `json:"deliveryFee" bson:"delivery_fee" gorm:"not null"`
	TotalAmount      int64        `json:"totalAmount" bson:"total_amount" gorm:"not null"`
	MpesaCode        *string      `json:"mpesaCode,omitempty" bson:"mpesa_code,omitempty" gorm:"size:64"`
	MpesaPhone       *string      `json:"mpesaPhone,omitempty" bson:"mpesa_phone,omitempty" gorm:"size:32"`
	Status           OrderStatus  `json:"status" bson:"status" gorm:"type:enum('pending','payment_confirmed','shipped','completed');default:'pending';index"`
	CreatedAt        time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time    `json:"updatedAt" bson:"updated_at"`
}

// ConfirmPayment records the customer supplied M-Pesa reference and moves a
// pending order to payment_confirmed.
func (o *Order) ConfirmPayment(code, phone string, at time.Time) error {
	if !o.Status.CanTransitionTo(StatusPaymentConfirmed) {
		return ErrInvalidTransition
	}
	o.MpesaCode = &code
	o.MpesaPhone = &phone
	o.Status = StatusPaymentConfirmed
	o.UpdatedAt = at
	return nil
}

// Advance moves a paid order one step further along the fulfilment path.
func (o *Order) Advance(to OrderStatus, at time.Time) error {
	if !o.Status.Paid() || !o.Status.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}
