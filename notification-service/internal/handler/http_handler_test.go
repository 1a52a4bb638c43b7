package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
	"github.com/tradepost/marketplace-automation/pkg/jwt"
	"github.com/tradepost/marketplace-automation/pkg/middleware"
)

type mockService struct {
	dispatchFn func(ctx context.Context, req *domain.NotificationRequest) *domain.DispatchResult
	got        *domain.NotificationRequest
}

func (m *mockService) Dispatch(ctx context.Context, req *domain.NotificationRequest) *domain.DispatchResult {
	m.got = req
	return m.dispatchFn(ctx, req)
}

func setup(t *testing.T, svc *mockService, exposeDetails bool) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := jwt.NewManager("test-secret", "", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	token, err := tokens.Generate("u2")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	r := gin.New()
	NewHandler(svc, middleware.NewAuthMiddleware(tokens), exposeDetails).RegisterRoutes(r)
	return r, token
}

func post(r *gin.Engine, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{"receiverId":"u1","senderId":"u2","senderName":"Bob","message":"hi","chatRoomId":"r1"}`

func TestSendChatNotification(t *testing.T) {
	tests := []struct {
		name       string
		result     *domain.DispatchResult
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "sent",
			result:     &domain.DispatchResult{Outcome: domain.OutcomeSent, MessageID: "m-1"},
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"success": true, "messageId": "m-1"},
		},
		{
			name:       "skipped",
			result:     &domain.DispatchResult{Outcome: domain.OutcomeSkipped, Reason: domain.ReasonInConversation},
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"success": true, "skipped": true},
		},
		{
			name:       "no token",
			result:     &domain.DispatchResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonNoDeviceToken},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]interface{}{"success": false, "error": "Receiver has no FCM token"},
		},
		{
			name:       "not found",
			result:     &domain.DispatchResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonReceiverNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]interface{}{"success": false, "error": "Receiver not found"},
		},
		{
			name:       "delivery failed hides detail",
			result:     &domain.DispatchResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonDeliveryFailed, Err: errors.New("fcm down")},
			wantStatus: http.StatusBadGateway,
			wantBody:   map[string]interface{}{"success": false, "error": "Failed to send notification"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{dispatchFn: func(context.Context, *domain.NotificationRequest) *domain.DispatchResult { return tt.result }}
			r, token := setup(t, svc, false)

			w := post(r, token, validBody)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", w.Code, tt.wantStatus, w.Body.String())
			}

			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			for k, v := range tt.wantBody {
				if body[k] != v {
					t.Errorf("body[%q] = %v, want %v", k, body[k], v)
				}
			}
			if _, ok := body["details"]; ok {
				t.Error("details exposed outside development")
			}
			if svc.got.ChatRoomID != "r1" {
				t.Errorf("request not forwarded: %+v", svc.got)
			}
		})
	}
}

func TestSendChatNotification_ExposeDetails(t *testing.T) {
	svc := &mockService{dispatchFn: func(context.Context, *domain.NotificationRequest) *domain.DispatchResult {
		return &domain.DispatchResult{Outcome: domain.OutcomeFailed, Reason: domain.ReasonDeliveryFailed, Err: errors.New("fcm down")}
	}}
	r, token := setup(t, svc, true)

	w := post(r, token, validBody)
	if !strings.Contains(w.Body.String(), "fcm down") {
		t.Errorf("body = %s, want channel detail", w.Body.String())
	}
}

func TestSendChatNotification_Rejects(t *testing.T) {
	svc := &mockService{dispatchFn: func(context.Context, *domain.NotificationRequest) *domain.DispatchResult {
		t.Fatal("dispatch must not be called")
		return nil
	}}
	r, token := setup(t, svc, false)

	if w := post(r, "", validBody); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := post(r, "not-a-jwt", validBody); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}
	if w := post(r, token, `{"receiverId":`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed json: status = %d, want 400", w.Code)
	}
}
