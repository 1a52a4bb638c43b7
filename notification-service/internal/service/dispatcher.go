package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
	"github.com/tradepost/marketplace-automation/notification-service/internal/presence"
	"github.com/tradepost/marketplace-automation/notification-service/internal/profile"
	"github.com/tradepost/marketplace-automation/notification-service/internal/push"
	"github.com/tradepost/marketplace-automation/pkg/log"
)

// Data envelope values read by the mobile client for deep-linking.
const (
	DataTypeChatMessage = "chat_message"
	ClickAction         = "FLUTTER_NOTIFICATION_CLICK"
)

// PayloadConfig holds the platform delivery hints attached to every push.
type PayloadConfig struct {
	AndroidChannelID string
	AndroidPriority  string
	Sound            string
	Badge            int
}

// DefaultPayloadConfig returns the hints the mobile app is built against.
func DefaultPayloadConfig() PayloadConfig {
	return PayloadConfig{
		AndroidChannelID: "chat_notifications",
		AndroidPriority:  "high",
		Sound:            "default",
		Badge:            1,
	}
}

// Dispatcher looks up the receiver, applies the presence gate and sends.
type Dispatcher struct {
	profiles profile.Store
	gate     *presence.Gate
	sender   push.Sender
	payload  PayloadConfig
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(profiles profile.Store, gate *presence.Gate, sender push.Sender, payload PayloadConfig) *Dispatcher {
	return &Dispatcher{
		profiles: profiles,
		gate:     gate,
		sender:   sender,
		payload:  payload,
	}
}

// Dispatch handles one request. It reads the profile store at most once and
// sends at most once; there are no retries.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.NotificationRequest) *domain.DispatchResult {
	l := log.Ctx(ctx)

	if req == nil {
		req = &domain.NotificationRequest{}
	}
	if missing := req.Missing(); len(missing) > 0 {
		return &domain.DispatchResult{
			Outcome: domain.OutcomeFailed,
			Reason:  domain.ReasonInvalidRequest,
			Detail:  "missing required parameters: " + strings.Join(missing, ", "),
		}
	}

	l = l.With().
		Str(log.FieldReceiverID, req.ReceiverID).
		Str(log.FieldSenderID, req.SenderID).
		Str(log.FieldRoomID, req.ChatRoomID).
		Logger()

	receiver, err := d.profiles.GetProfile(ctx, req.ReceiverID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			l.Info().Msg("receiver not found")
			return &domain.DispatchResult{
				Outcome: domain.OutcomeFailed,
				Reason:  domain.ReasonReceiverNotFound,
				Detail:  "receiver not found",
				Err:     err,
			}
		}
		l.Error().Err(err).Msg("receiver lookup failed")
		return &domain.DispatchResult{
			Outcome: domain.OutcomeFailed,
			Reason:  domain.ReasonLookupFailed,
			Detail:  err.Error(),
			Err:     err,
		}
	}

	if d.gate.ShouldSuppress(&receiver.UserPresence, req.SenderID) {
		l.Info().Msg("receiver is in conversation with sender, skipping notification")
		return &domain.DispatchResult{
			Outcome: domain.OutcomeSkipped,
			Reason:  domain.ReasonInConversation,
			Detail:  "recipient currently in conversation with sender",
		}
	}

	if receiver.FCMToken == "" {
		l.Info().Msg("receiver has no device token")
		return &domain.DispatchResult{
			Outcome: domain.OutcomeFailed,
			Reason:  domain.ReasonNoDeviceToken,
			Detail:  "no deliverable device registered",
		}
	}

	msgID, err := d.sender.Send(ctx, d.buildMessage(req, receiver.FCMToken))
	if err != nil {
		l.Error().Err(err).Msg("push delivery failed")
		return &domain.DispatchResult{
			Outcome: domain.OutcomeFailed,
			Reason:  domain.ReasonDeliveryFailed,
			Detail:  fmt.Sprintf("failed to send notification: %v", err),
			Err:     err,
		}
	}

	l.Info().Str("message_id", msgID).Msg("notification sent")
	return &domain.DispatchResult{
		Outcome:   domain.OutcomeSent,
		MessageID: msgID,
	}
}

func (d *Dispatcher) buildMessage(req *domain.NotificationRequest, token string) *domain.PushMessage {
	return &domain.PushMessage{
		Token: token,
		Title: req.SenderName,
		Body:  req.Message,
		Data: map[string]string{
			"type":         DataTypeChatMessage,
			"senderId":     req.SenderID,
			"senderName":   req.SenderName,
			"chatRoomId":   req.ChatRoomID,
			"message":      req.Message,
			"click_action": ClickAction,
		},
		Android: domain.AndroidOptions{
			ChannelID:      d.payload.AndroidChannelID,
			Priority:       d.payload.AndroidPriority,
			DefaultSound:   true,
			DefaultVibrate: true,
		},
		APNS: domain.APNSOptions{
			Sound: d.payload.Sound,
			Badge: d.payload.Badge,
		},
	}
}
