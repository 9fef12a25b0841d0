// Package event defines the notifications the core pushes to live
// connections. Events are values; sinks must not mutate them.
package event

import (
	"time"

	"direct-chat/domain"
)

type DomainEvent interface {
	Room() domain.RoomID
}

// MessageDelivered carries a persisted message to the rooms of its sender
// and recipient. It is always built from the stored record, never from the
// inbound request.
type MessageDelivered struct {
	ID          int64
	SenderID    domain.UserID
	RecipientID domain.UserID
	Content     string
	At          time.Time
	// TargetRoom is the room this copy is addressed to; the same message
	// yields one event per target room.
	TargetRoom domain.RoomID
}

func (m MessageDelivered) Room() domain.RoomID { return m.TargetRoom }

// PresenceChanged announces a user entering or leaving their chat room.
// Delivery is best-effort; losing one never blocks membership changes.
type PresenceChanged struct {
	UserID   domain.UserID
	Username string
	Entered  bool
	At       time.Time
}

func (p PresenceChanged) Room() domain.RoomID { return domain.RoomFor(p.UserID) }
