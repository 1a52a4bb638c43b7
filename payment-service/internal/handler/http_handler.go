package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradepost/marketplace-automation/payment-service/internal/service"
	pkglog "github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/pkg/response"
)

const (
	HeaderSignature = "X-Razorpay-Signature"
	HeaderEventID   = "X-Razorpay-Event-Id"
)

// Handler handles HTTP requests for the payment service.
type Handler struct {
	svc         service.PaymentService
	environment string
}

// NewHandler creates a new HTTP handler. Error details are returned to
// callers only when environment is "development".
func NewHandler(svc service.PaymentService, environment string) *Handler {
	return &Handler{
		svc:         svc,
		environment: environment,
	}
}

func (h *Handler) exposeDetails() bool {
	return h.environment == "development"
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/orders/create", h.CreateOrder)
		api.GET("/orders/:order_id", h.GetOrder)
		api.POST("/payments/verify", h.VerifyPayment)
		api.GET("/payments/:payment_id", h.GetPayment)
		api.POST("/payment-links/create", h.CreatePaymentLink)
		api.POST("/webhooks/razorpay", h.Webhook)
	}

	r.NoRoute(response.NoRoute)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}

// CreateOrder handles POST /api/orders/create.
func (h *Handler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "amount and receipt are required")
		return
	}

	order, err := h.svc.CreateOrder(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingReceipt):
			response.BadRequest(c, "amount and receipt are required")
		case errors.Is(err, service.ErrInvalidAmount):
			response.BadRequest(c, "amount must be greater than 0 and a valid number")
		default:
			h.gatewayError(c, err, "Failed to create order")
		}
		return
	}

	response.Success(c, gin.H{"order": gin.H{
		"id":         order.ID,
		"amount":     order.Amount,
		"currency":   order.Currency,
		"receipt":    order.Receipt,
		"status":     order.Status,
		"notes":      order.Notes,
		"created_at": order.CreatedAt,
	}})
}

// GetOrder handles GET /api/orders/:order_id.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("order_id"))
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "Order not found")
		return
	}
	if err != nil {
		h.gatewayError(c, err, "Failed to fetch order details")
		return
	}

	response.Success(c, gin.H{"order": order})
}

// GetPayment handles GET /api/payments/:payment_id.
func (h *Handler) GetPayment(c *gin.Context) {
	payment, err := h.svc.GetPayment(c.Request.Context(), c.Param("payment_id"))
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "Payment not found")
		return
	}
	if err != nil {
		h.gatewayError(c, err, "Failed to fetch payment details")
		return
	}

	response.Success(c, gin.H{"payment": payment})
}

// CreatePaymentLink handles POST /api/payment-links/create.
func (h *Handler) CreatePaymentLink(c *gin.Context) {
	var req service.PaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "amount and description are required")
		return
	}

	link, err := h.svc.CreatePaymentLink(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			response.BadRequest(c, "amount must be greater than 0")
			return
		}
		h.gatewayError(c, err, "Failed to create payment link")
		return
	}

	response.Success(c, gin.H{"payment_link": link})
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment handles POST /api/payments/verify.
func (h *Handler) VerifyPayment(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Missing required payment parameters")
		return
	}

	if err := h.svc.VerifyPayment(ctx, req.OrderID, req.PaymentID, req.Signature); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			response.BadRequest(c, "Missing required payment parameters")
		case errors.Is(err, service.ErrInvalidSignature):
			response.BadRequest(c, "Invalid payment signature")
		default:
			l.Error().Err(err).Msg("payment verification failed")
			h.internalError(c, "Failed to verify payment", err)
		}
		return
	}

	response.Success(c, gin.H{
		"message":    "Payment verified successfully",
		"payment_id": req.PaymentID,
		"order_id":   req.OrderID,
	})
}

// Webhook handles POST /api/webhooks/razorpay. The body is read raw so the
// signature is checked over the exact bytes the gateway signed.
func (h *Handler) Webhook(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "Failed to read webhook body")
		return
	}

	_, err = h.svc.HandleWebhook(ctx, body, c.GetHeader(HeaderSignature), c.GetHeader(HeaderEventID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			response.BadRequest(c, "Invalid webhook signature")
		case errors.Is(err, service.ErrMalformedWebhook):
			response.BadRequest(c, "Invalid webhook payload")
		default:
			l.Error().Err(err).Msg("webhook processing failed")
			h.internalError(c, "Failed to process webhook", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) gatewayError(c *gin.Context, err error, message string) {
	l := pkglog.Ctx(c.Request.Context())
	l.Error().Err(err).Msg(message)

	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrGateway) {
		status = http.StatusBadGateway
	}
	if h.exposeDetails() {
		response.ErrorWithDetails(c, status, message, err.Error())
		return
	}
	response.Error(c, status, message)
}

func (h *Handler) internalError(c *gin.Context, message string, err error) {
	if h.exposeDetails() {
		response.ErrorWithDetails(c, http.StatusInternalServerError, message, err.Error())
		return
	}
	response.InternalError(c, message)
}
