// Package signature verifies HMAC-SHA256 signatures presented by a payment
// gateway, either over an order/payment pair or over a raw webhook body.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingSecret is returned when verification is attempted without a secret.
var ErrMissingSecret = errors.New("signature secret is not configured")

// Sign returns the lowercase hex HMAC-SHA256 of message keyed by secret.
func Sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether presented is the signature of message under secret.
// The message must be the exact bytes the counterparty signed. A wrong or
// malformed signature yields false with a nil error.
func Verify(secret string, message []byte, presented string) (bool, error) {
	if secret == "" {
		return false, ErrMissingSecret
	}
	expected := Sign(secret, message)
	// hmac.Equal is constant time for equal-length inputs and returns false
	// on a length mismatch, which is what exact string equality requires.
	return hmac.Equal([]byte(expected), []byte(presented)), nil
}

// PaymentMessage builds the canonical "orderId|paymentId" message signed by
// the gateway at checkout.
func PaymentMessage(orderID, paymentID string) []byte {
	return []byte(orderID + "|" + paymentID)
}

// Verifier binds a secret so callers do not pass it around.
type Verifier struct {
	secret string
}

// NewVerifier returns a Verifier for secret. An empty secret is allowed here;
// Verify reports ErrMissingSecret when it is used.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Configured reports whether a secret is present.
func (v *Verifier) Configured() bool {
	return v != nil && v.secret != ""
}

// Verify checks presented against message.
func (v *Verifier) Verify(message []byte, presented string) (bool, error) {
	if v == nil {
		return false, ErrMissingSecret
	}
	return Verify(v.secret, message, presented)
}
