package domain

import "strings"

// UserPresence is the live state the mobile client reports for a user.
type UserPresence struct {
	IsOnline bool
	// CurrentChatRoom encodes the participants of the room the user has
	// open. Its format belongs to the client; it is only ever tested for
	// membership.
	CurrentChatRoom string
}

// UserProfile is the read-only receiver record consulted before a push.
type UserProfile struct {
	UserID   string
	FCMToken string
	UserPresence
}

// NotificationRequest asks for a push to receiverID about a new message.
type NotificationRequest struct {
	ReceiverID string `json:"receiverId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
	ChatRoomID string `json:"chatRoomId"`
}

// Missing returns the JSON names of required fields that are empty or blank.
func (r *NotificationRequest) Missing() []string {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("receiverId", r.ReceiverID)
	check("senderId", r.SenderID)
	check("senderName", r.SenderName)
	check("message", r.Message)
	check("chatRoomId", r.ChatRoomID)
	return missing
}

// Outcome is the terminal state of a dispatch.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Reason codes attached to skipped and failed outcomes.
const (
	ReasonInvalidRequest   = "invalid_request"
	ReasonReceiverNotFound = "receiver_not_found"
	ReasonLookupFailed     = "lookup_failed"
	ReasonInConversation   = "in_conversation"
	ReasonNoDeviceToken    = "no_device_token"
	ReasonDeliveryFailed   = "delivery_failed"
)

// DispatchResult reports what happened to one NotificationRequest.
type DispatchResult struct {
	Outcome   Outcome
	Reason    string
	Detail    string
	MessageID string
	// Err is the underlying store or channel error, if any.
	Err error
}

// PushMessage is a channel-neutral push notification.
type PushMessage struct {
	Token   string
	Title   string
	Body    string
	Data    map[string]string
	Android AndroidOptions
	APNS    APNSOptions
}

// AndroidOptions are Android delivery hints.
type AndroidOptions struct {
	ChannelID      string
	Priority       string
	DefaultSound   bool
	DefaultVibrate bool
}

// APNSOptions are iOS delivery hints.
type APNSOptions struct {
	Sound string
	Badge int
}
