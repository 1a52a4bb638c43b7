package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
	"github.com/tradepost/marketplace-automation/notification-service/internal/service"
	pkglog "github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/pkg/middleware"
	"github.com/tradepost/marketplace-automation/pkg/response"
)

const missingParamsMessage = "Missing required parameters: receiverId, senderId, senderName, message, chatRoomId"

// Handler handles HTTP requests for the notification service.
type Handler struct {
	svc            service.NotificationService
	authMiddleware *middleware.AuthMiddleware
	exposeDetails  bool
}

// NewHandler creates a new HTTP handler. exposeDetails adds channel and
// store error text to failure bodies; enable it only in development.
func NewHandler(svc service.NotificationService, authMiddleware *middleware.AuthMiddleware, exposeDetails bool) *Handler {
	return &Handler{
		svc:            svc,
		authMiddleware: authMiddleware,
		exposeDetails:  exposeDetails,
	}
}

// RegisterRoutes registers all routes onto the Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// POST /api/v1/notifications/chat (auth required)
		api.POST("/notifications/chat", h.authMiddleware.RequireAuth(), h.SendChatNotification)
	}
}

// SendChatNotification handles POST /api/v1/notifications/chat.
func (h *Handler) SendChatNotification(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, missingParamsMessage)
		return
	}

	l := pkglog.Ctx(ctx)
	l.Info().
		Str("caller_id", middleware.GetUserID(c)).
		Str(pkglog.FieldReceiverID, req.ReceiverID).
		Msg("chat notification requested")

	res := h.svc.Dispatch(ctx, &req)

	switch res.Outcome {
	case domain.OutcomeSent:
		response.Success(c, gin.H{"messageId": res.MessageID})
	case domain.OutcomeSkipped:
		response.Success(c, gin.H{"skipped": true, "reason": "User is in chat with sender"})
	default:
		status, message := failureStatus(res.Reason)
		if h.exposeDetails && res.Err != nil {
			response.ErrorWithDetails(c, status, message, res.Err.Error())
			return
		}
		response.Error(c, status, message)
	}
}

func failureStatus(reason string) (int, string) {
	switch reason {
	case domain.ReasonInvalidRequest:
		return http.StatusBadRequest, missingParamsMessage
	case domain.ReasonReceiverNotFound:
		return http.StatusNotFound, "Receiver not found"
	case domain.ReasonNoDeviceToken:
		return http.StatusUnprocessableEntity, "Receiver has no FCM token"
	case domain.ReasonLookupFailed:
		return http.StatusBadGateway, "Failed to look up receiver"
	default:
		return http.StatusBadGateway, "Failed to send notification"
	}
}
