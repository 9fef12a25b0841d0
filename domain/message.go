package domain

import "time"

// Message is an immutable direct message between two users.
// ID and Timestamp are assigned by the message repository at persistence
// time; nothing downstream may recompute them, so that a live push and a
// later history read always show the same record.
type Message struct {
	ID          int64
	SenderID    UserID
	RecipientID UserID
	Content     string
	Timestamp   time.Time
}
