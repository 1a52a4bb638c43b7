// Package presence decides whether a chat push is redundant because the
// receiver is already looking at the conversation.
package presence

import (
	"strings"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

// MembershipFunc reports whether senderID is a participant of room.
type MembershipFunc func(room, senderID string) bool

// ContainsMembership treats the room as an opaque string and checks for
// senderID as a substring.
func ContainsMembership(room, senderID string) bool {
	return strings.Contains(room, senderID)
}

// Gate applies the suppression rule.
type Gate struct {
	isMember MembershipFunc
}

// NewGate creates a Gate. A nil isMember selects ContainsMembership.
func NewGate(isMember MembershipFunc) *Gate {
	if isMember == nil {
		isMember = ContainsMembership
	}
	return &Gate{isMember: isMember}
}

// ShouldSuppress returns true only when the receiver is online with a chat
// room open that has senderID as a member. Missing or partial presence
// never suppresses.
func (g *Gate) ShouldSuppress(p *domain.UserPresence, senderID string) bool {
	if p == nil || !p.IsOnline || p.CurrentChatRoom == "" || senderID == "" {
		return false
	}
	return g.isMember(p.CurrentChatRoom, senderID)
}
