package presence

import (
	"testing"

	"github.com/tradepost/marketplace-automation/notification-service/internal/domain"
)

func TestGate_ShouldSuppress(t *testing.T) {
	g := NewGate(nil)

	tests := []struct {
		name     string
		presence *domain.UserPresence
		sender   string
		want     bool
	}{
		{"online in room with sender", &domain.UserPresence{IsOnline: true, CurrentChatRoom: "room_A_B"}, "A", true},
		{"online in room without sender", &domain.UserPresence{IsOnline: true, CurrentChatRoom: "room_A_B"}, "C", false},
		{"offline in room with sender", &domain.UserPresence{IsOnline: false, CurrentChatRoom: "room_A_B"}, "A", false},
		{"online without room", &domain.UserPresence{IsOnline: true}, "A", false},
		{"no presence", nil, "A", false},
		{"empty sender", &domain.UserPresence{IsOnline: true, CurrentChatRoom: "room_A_B"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ShouldSuppress(tt.presence, tt.sender); got != tt.want {
				t.Errorf("ShouldSuppress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate_OfflineNeverSuppresses(t *testing.T) {
	g := NewGate(nil)
	rooms := []string{"", "u1_u2", "u2", "anything", "u2u2u2"}
	for _, room := range rooms {
		p := &domain.UserPresence{IsOnline: false, CurrentChatRoom: room}
		if g.ShouldSuppress(p, "u2") {
			t.Errorf("offline receiver with room %q suppressed", room)
		}
	}
}

func TestGate_CustomMembership(t *testing.T) {
	var gotRoom, gotSender string
	g := NewGate(func(room, senderID string) bool {
		gotRoom, gotSender = room, senderID
		return false
	})

	p := &domain.UserPresence{IsOnline: true, CurrentChatRoom: "room_A_B"}
	if g.ShouldSuppress(p, "A") {
		t.Fatal("custom membership returned false but gate suppressed")
	}
	if gotRoom != "room_A_B" || gotSender != "A" {
		t.Errorf("membership called with (%q, %q)", gotRoom, gotSender)
	}
}
