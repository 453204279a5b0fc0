package domain

import "time"

const (
	EventOrderCreated          = "order.created"
	EventOrderPaymentConfirmed = "order.payment_confirmed"
	EventOrderStatusChanged    = "order.status_changed"
)

type OrderCreatedEvent struct {
	OrderID     string       `json:"orderId"`
	Email       string       `json:"email"`
	Edition     Edition      `json:"edition"`
	Quantity    int          `json:"quantity"`
	Delivery    DeliveryZone `json:"deliveryLocation"`
	TotalAmount int64        `json:"totalAmount"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type OrderStatusEvent struct {
	OrderID   string      `json:"orderId"`
	From      OrderStatus `json:"from"`
	Status    OrderStatus `json:"status"`
	MpesaCode string      `json:"mpesaCode,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:     o.ID,
		Email:       o.Email,
		Edition:     o.Edition,
		Quantity:    o.Quantity,
		Delivery:    o.DeliveryLocation,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}
}

func NewOrderStatusEvent(o *Order, from OrderStatus) OrderStatusEvent {
	evt := OrderStatusEvent{
		OrderID:   o.ID,
		From:      from,
		Status:    o.Status,
		UpdatedAt: o.UpdatedAt,
	}
	if o.MpesaCode != nil {
		evt.MpesaCode = *o.MpesaCode
	}
	return evt
}
