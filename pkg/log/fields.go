package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware keys)
	FieldUserID = "user_id"

	// Service
	FieldService = "service"

	// Chat
	FieldReceiverID = "receiver_id"
	FieldSenderID   = "sender_id"
	FieldRoomID     = "room_id"

	// Payments
	FieldOrderID   = "order_id"
	FieldPaymentID = "payment_id"
	FieldEventID   = "event_id"
	FieldEventType = "event_type"

	// Sweeps
	FieldSweep = "sweep"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
