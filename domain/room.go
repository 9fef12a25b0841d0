package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// RoomID identifies a per-user delivery room. Every live connection of a
// user joins that user's own room; a message to user N is fanned out to
// room "user_N" and to the sender's room.
type RoomID string

// RoomFor returns the delivery room of a user.
func RoomFor(id UserID) RoomID {
	return RoomID(fmt.Sprintf("user_%d", id))
}

// ConnectionID distinguishes simultaneous connections of the same user
// (several browser tabs are several connections in the same room).
type ConnectionID = uuid.UUID

// Connection is the lightweight handle the core keeps for a live transport
// session. The transport itself stays in the gateway; the core only needs
// the id and the authenticated identity, fixed at handshake time.
type Connection struct {
	ID       ConnectionID
	UserID   UserID
	Username string
}

// NewConnection tags a fresh connection with its authenticated user.
func NewConnection(user User) Connection {
	return Connection{ID: uuid.New(), UserID: user.ID, Username: user.Username}
}
