package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

// FCMConfig holds Firebase Cloud Messaging configuration.
type FCMConfig struct {
	ProjectID       string
	CredentialsFile string // empty uses application default credentials
	DryRun          bool
}

// FCMSender sends through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
	dryRun bool
}

// NewFCMSender initialises the Firebase app and its messaging client.
func NewFCMSender(ctx context.Context, cfg FCMConfig) (*FCMSender, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMSender{client: client, dryRun: cfg.DryRun}, nil
}

// Send delivers msg. In dry-run mode FCM validates without delivering.
func (s *FCMSender) Send(ctx context.Context, msg *domain.PushMessage) (string, error) {
	m := BuildMessage(msg)
	if s.dryRun {
		return s.client.SendDryRun(ctx, m)
	}
	return s.client.Send(ctx, m)
}

// BuildMessage converts a PushMessage into the FCM wire shape.
func BuildMessage(msg *domain.PushMessage) *messaging.Message {
	badge := msg.APNS.Badge
	return &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				ChannelID:             msg.Android.ChannelID,
				Priority:              androidPriority(msg.Android.Priority),
				DefaultSound:          msg.Android.DefaultSound,
				DefaultVibrateTimings: msg.Android.DefaultVibrate,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: msg.APNS.Sound,
					Badge: &badge,
				},
			},
		},
	}
}

func androidPriority(s string) messaging.AndroidNotificationPriority {
	switch s {
	case "min":
		return messaging.PriorityMin
	case "low":
		return messaging.PriorityLow
	case "default":
		return messaging.PriorityDefault
	case "max":
		return messaging.PriorityMax
	default:
		return messaging.PriorityHigh
	}
}
