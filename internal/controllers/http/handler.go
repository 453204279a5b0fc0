package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"book-order-service/internal/auth"
	"book-order-service/internal/broadcast"
	"book-order-service/internal/domain"
	"book-order-service/internal/pricing"
	"book-order-service/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const sessionCookie = "admin_session"

// StreamRegistry tracks the open launch page streams.
type StreamRegistry interface {
	Register(ctx context.Context) *broadcast.Channel
	Unregister(ch *broadcast.Channel)
}

type Options struct {
	SessionTTL time.Duration
	LoginRate  rate.Limit
	LoginBurst int
}

type Handler struct {
	orders     *services.OrderService
	settings   *services.SettingService
	admin      *services.AdminService
	streams    StreamRegistry
	limiter    *loginLimiter
	sessionTTL time.Duration
}

func NewHandler(orders *services.OrderService, settings *services.SettingService, admin *services.AdminService, streams StreamRegistry, opts Options) *Handler {
	return &Handler{
		orders:     orders,
		settings:   settings,
		admin:      admin,
		streams:    streams,
		limiter:    newLoginLimiter(opts.LoginRate, opts.LoginBurst),
		sessionTTL: opts.SessionTTL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.GET("/pricing", h.Pricing)
	api.POST("/orders", h.CreateOrder)
	api.GET("/orders/:id", h.GetOrder)
	api.POST("/orders/:id/payment", h.ConfirmPayment)

	r.GET("/launch", h.Launch)
	r.GET("/launch/sse", h.LaunchStream)

	admin := r.Group("/admin")
	admin.POST("/login", h.limiter.middleware(), h.Login)
	admin.POST("/logout", h.Logout)

	authed := admin.Group("", h.requireAdmin)
	authed.GET("/settings", h.GetSettings)
	authed.PUT("/settings", h.UpdateSettings)
	authed.POST("/orders/:id/status", h.AdvanceOrder)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Pricing(c *gin.Context) {
	var q PricingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edition := domain.Edition(q.Edition)
	zone := domain.DeliveryZone(q.DeliveryLocation)
	b, err := h.orders.Quote(edition, q.Quantity, zone)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PricingResponse{
		Edition:          edition,
		Quantity:         q.Quantity,
		DeliveryLocation: zone,
		Breakdown:        b,
	})
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orders.SubmitOrder(c.Request.Context(), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{OrderID: order.ID, Order: order})
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orders.ConfirmPayment(c.Request.Context(), c.Param("id"), services.PaymentInput{
		MpesaCode:  req.MpesaCode,
		MpesaPhone: req.MpesaPhone,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// writeError maps service errors to status codes. Anything unrecognised is
// reported with a generic message; the cause is already logged.
func writeError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve.Fields})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentAlreadyConfirmed), errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, pricing.ErrUnknownEdition), errors.Is(err, pricing.ErrUnknownZone), errors.Is(err, pricing.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": services.ErrOperationFailed.Error()})
	}
}
