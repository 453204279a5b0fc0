package http

import (
	"time"

	"book-order-service/internal/domain"
	"book-order-service/internal/pricing"
	"book-order-service/internal/services"
)

type CreateOrderRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	City             string `json:"city"`
	PostalCode       string `json:"postalCode"`
	DeliveryLocation string `json:"deliveryLocation"`
	Edition          string `json:"edition"`
	Quantity         int    `json:"quantity"`
}

func (r CreateOrderRequest) toInput() services.SubmitOrderInput {
	return services.SubmitOrderInput{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		City:             r.City,
		PostalCode:       r.PostalCode,
		DeliveryLocation: domain.DeliveryZone(r.DeliveryLocation),
		Edition:          domain.Edition(r.Edition),
		Quantity:         r.Quantity,
	}
}

type CreateOrderResponse struct {
	OrderID string        `json:"orderId"`
	Order   *domain.Order `json:"order"`
}

type ConfirmPaymentRequest struct {
	MpesaCode  string `json:"mpesaCode"`
	MpesaPhone string `json:"mpesaPhone"`
}

type PricingQuery struct {
	Edition          string `form:"edition,default=paperback" binding:"oneof=paperback hardback"`
	Quantity         int    `form:"quantity,default=1" binding:"min=1,max=5"`
	DeliveryLocation string `form:"deliveryLocation" binding:"required,oneof=nairobi kenya"`
}

type PricingResponse struct {
	Edition          domain.Edition      `json:"edition"`
	Quantity         int                 `json:"quantity"`
	DeliveryLocation domain.DeliveryZone `json:"deliveryLocation"`
	pricing.Breakdown
}

type LaunchResponse struct {
	YoutubeURL *string `json:"youtubeUrl"`
	VideoID    string  `json:"videoId,omitempty"`
	EmbedURL   string  `json:"embedUrl,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UpdateSettingsRequest struct {
	YoutubeURL *string `json:"youtubeUrl"`
}

type SettingsResponse struct {
	YoutubeURL  *string    `json:"youtubeUrl"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	Connections *int       `json:"connections,omitempty"`
}

type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
