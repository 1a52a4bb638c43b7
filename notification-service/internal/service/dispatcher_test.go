package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
	"github.com/tradepost/marketplace-automation/notification-service/internal/presence"
	"github.com/tradepost/marketplace-automation/notification-service/internal/profile"
)

type mockStore struct {
	getFn func(ctx context.Context, userID string) (*domain.UserProfile, error)
	calls int
}

func (m *mockStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	m.calls++
	return m.getFn(ctx, userID)
}

func (m *mockStore) Close() error { return nil }

type mockSender struct {
	sendFn func(ctx context.Context, msg *domain.PushMessage) (string, error)
	sent   []*domain.PushMessage
}

func (m *mockSender) Send(ctx context.Context, msg *domain.PushMessage) (string, error) {
	m.sent = append(m.sent, msg)
	if m.sendFn == nil {
		return "projects/p/messages/1", nil
	}
	return m.sendFn(ctx, msg)
}

func storeWith(p *domain.UserProfile, err error) *mockStore {
	return &mockStore{getFn: func(context.Context, string) (*domain.UserProfile, error) { return p, err }}
}

func validRequest() *domain.NotificationRequest {
	return &domain.NotificationRequest{
		ReceiverID: "u1",
		SenderID:   "u2",
		SenderName: "Bob",
		Message:    "hi",
		ChatRoomID: "r1",
	}
}

func newTestDispatcher(store *mockStore, sender *mockSender) *Dispatcher {
	return NewDispatcher(store, presence.NewGate(nil), sender, DefaultPayloadConfig())
}

func TestDispatch_Outcomes(t *testing.T) {
	lookupErr := errors.New("connection refused")
	sendErr := errors.New("registration-token-not-registered")

	tests := []struct {
		name        string
		profile     *domain.UserProfile
		storeErr    error
		sendErr     error
		wantOutcome domain.Outcome
		wantReason  string
		wantSends   int
	}{
		{
			name:        "in conversation with sender",
			profile:     &domain.UserProfile{UserID: "u1", FCMToken: "tok", UserPresence: domain.UserPresence{IsOnline: true, CurrentChatRoom: "u1_u2"}},
			wantOutcome: domain.OutcomeSkipped,
			wantReason:  domain.ReasonInConversation,
		},
		{
			name:        "no device token",
			profile:     &domain.UserProfile{UserID: "u1"},
			wantOutcome: domain.OutcomeFailed,
			wantReason:  domain.ReasonNoDeviceToken,
		},
		{
			name:        "receiver not found",
			storeErr:    profile.ErrProfileNotFound,
			wantOutcome: domain.OutcomeFailed,
			wantReason:  domain.ReasonReceiverNotFound,
		},
		{
			name:        "lookup failed",
			storeErr:    lookupErr,
			wantOutcome: domain.OutcomeFailed,
			wantReason:  domain.ReasonLookupFailed,
		},
		{
			name:        "online in another room",
			profile:     &domain.UserProfile{UserID: "u1", FCMToken: "tok", UserPresence: domain.UserPresence{IsOnline: true, CurrentChatRoom: "u1_u9"}},
			wantOutcome: domain.OutcomeSent,
			wantSends:   1,
		},
		{
			name:        "offline in room with sender",
			profile:     &domain.UserProfile{UserID: "u1", FCMToken: "tok", UserPresence: domain.UserPresence{IsOnline: false, CurrentChatRoom: "u1_u2"}},
			wantOutcome: domain.OutcomeSent,
			wantSends:   1,
		},
		{
			name:        "delivery failed",
			profile:     &domain.UserProfile{UserID: "u1", FCMToken: "tok"},
			sendErr:     sendErr,
			wantOutcome: domain.OutcomeFailed,
			wantReason:  domain.ReasonDeliveryFailed,
			wantSends:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storeWith(tt.profile, tt.storeErr)
			sender := &mockSender{}
			if tt.sendErr != nil {
				sender.sendFn = func(context.Context, *domain.PushMessage) (string, error) { return "", tt.sendErr }
			}

			res := newTestDispatcher(store, sender).Dispatch(context.Background(), validRequest())

			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", res.Outcome, tt.wantOutcome)
			}
			if res.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", res.Reason, tt.wantReason)
			}
			if store.calls != 1 {
				t.Errorf("profile reads = %d, want 1", store.calls)
			}
			if len(sender.sent) != tt.wantSends {
				t.Errorf("sends = %d, want %d", len(sender.sent), tt.wantSends)
			}
			if tt.sendErr != nil && !errors.Is(res.Err, tt.sendErr) {
				t.Errorf("Err = %v, want channel error", res.Err)
			}
		})
	}
}

func TestDispatch_InvalidRequestMakesNoCalls(t *testing.T) {
	tests := []struct {
		name string
		mut  func(r *domain.NotificationRequest)
	}{
		{"missing receiver", func(r *domain.NotificationRequest) { r.ReceiverID = "" }},
		{"missing sender", func(r *domain.NotificationRequest) { r.SenderID = "" }},
		{"missing sender name", func(r *domain.NotificationRequest) { r.SenderName = "" }},
		{"blank message", func(r *domain.NotificationRequest) { r.Message = "   " }},
		{"missing room", func(r *domain.NotificationRequest) { r.ChatRoomID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storeWith(&domain.UserProfile{FCMToken: "tok"}, nil)
			sender := &mockSender{}
			req := validRequest()
			tt.mut(req)

			res := newTestDispatcher(store, sender).Dispatch(context.Background(), req)

			if res.Outcome != domain.OutcomeFailed || res.Reason != domain.ReasonInvalidRequest {
				t.Errorf("result = %+v, want failed/invalid_request", res)
			}
			if store.calls != 0 || len(sender.sent) != 0 {
				t.Errorf("external calls made: reads=%d sends=%d", store.calls, len(sender.sent))
			}
		})
	}
}

func TestDispatch_Payload(t *testing.T) {
	store := storeWith(&domain.UserProfile{UserID: "u1", FCMToken: "tok-1"}, nil)
	sender := &mockSender{sendFn: func(context.Context, *domain.PushMessage) (string, error) { return "msg-42", nil }}

	res := newTestDispatcher(store, sender).Dispatch(context.Background(), validRequest())
	if res.Outcome != domain.OutcomeSent || res.MessageID != "msg-42" {
		t.Fatalf("result = %+v, want sent with msg-42", res)
	}

	m := sender.sent[0]
	if m.Token != "tok-1" || m.Title != "Bob" || m.Body != "hi" {
		t.Errorf("message = %+v", m)
	}
	wantData := map[string]string{
		"type":         "chat_message",
		"senderId":     "u2",
		"senderName":   "Bob",
		"chatRoomId":   "r1",
		"message":      "hi",
		"click_action": "FLUTTER_NOTIFICATION_CLICK",
	}
	for k, v := range wantData {
		if m.Data[k] != v {
			t.Errorf("Data[%q] = %q, want %q", k, m.Data[k], v)
		}
	}
	if m.Android.ChannelID != "chat_notifications" || m.APNS.Badge != 1 {
		t.Errorf("platform hints = %+v / %+v", m.Android, m.APNS)
	}
}
