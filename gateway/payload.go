package gateway

import (
	"time"

	"github.com/samber/lo"

	"direct-chat/domain"
	"direct-chat/domain/event"
)

// Wire shapes of the REST and websocket surfaces. Timestamps travel as
// ISO-8601 strings; ids as numbers.

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type addContactRequest struct {
	ContactID int64 `json:"contact_id"`
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// wireMessage is the push payload and the history row: both are built
// from the persisted record, so they always agree.
type wireMessage struct {
	ID          int64  `json:"id"`
	Content     string `json:"content"`
	SenderID    int64  `json:"sender_id"`
	RecipientID int64  `json:"recipient_id"`
	Timestamp   string `json:"timestamp"`
}

func toWireMessage(m domain.Message) wireMessage {
	return wireMessage{
		ID:          m.ID,
		Content:     m.Content,
		SenderID:    int64(m.SenderID),
		RecipientID: int64(m.RecipientID),
		Timestamp:   m.Timestamp.Format(time.RFC3339Nano),
	}
}

func toWireMessages(messages []domain.Message) []wireMessage {
	return lo.Map(messages, func(m domain.Message, _ int) wireMessage {
		return toWireMessage(m)
	})
}

// clientFrame is what a websocket client sends.
// Types: "send_message" {recipient_id, content}, "join"/"leave" {user_id}.
// The user_id of join/leave is advisory only; the server always checks it
// against the authenticated identity.
type clientFrame struct {
	Type        string `json:"type"`
	RecipientID int64  `json:"recipient_id,omitempty"`
	Content     string `json:"content,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
}

// serverFrame is what the server pushes down a websocket.
// Types: "receive_message", "ack", "status", "error".
type serverFrame struct {
	Type    string       `json:"type"`
	Message *wireMessage `json:"message,omitempty"`
	Msg     string       `json:"msg,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func messageFrame(frameType string, m domain.Message) serverFrame {
	wire := toWireMessage(m)
	return serverFrame{Type: frameType, Message: &wire}
}

func deliveredFrame(e event.MessageDelivered) serverFrame {
	wire := wireMessage{
		ID:          e.ID,
		Content:     e.Content,
		SenderID:    int64(e.SenderID),
		RecipientID: int64(e.RecipientID),
		Timestamp:   e.At.Format(time.RFC3339Nano),
	}
	return serverFrame{Type: "receive_message", Message: &wire}
}

func statusFrame(e event.PresenceChanged) serverFrame {
	verb := "entered"
	if !e.Entered {
		verb = "left"
	}
	return serverFrame{Type: "status", Msg: e.Username + " has " + verb + " the chat"}
}

func errorFrame(err error) serverFrame {
	return serverFrame{Type: "error", Error: err.Error()}
}
