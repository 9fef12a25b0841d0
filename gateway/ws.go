package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/domain/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// handleWS upgrades an authenticated request to a websocket, registers the
// connection and joins it to its own room, then runs the read loop until
// the transport closes. Cleanup (leave all rooms, unregister) runs exactly
// once on every exit path, explicit leave or abrupt close alike.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	conn := domain.NewConnection(domain.User{ID: identity.UserID, Username: identity.Username})
	sink := NewConnSink(s.connectionBufferSize)

	s.registry.Register(conn, sink)
	if err := s.rooms.Join(conn, conn.UserID); err != nil {
		// Self-join cannot fail the identity check; anything here is fatal
		// for the connection.
		s.log.Error("Self join failed", "conn_id", conn.ID, "error", err)
		s.registry.Unregister(conn.ID)
		_ = ws.Close()
		return
	}

	client := &wsClient{
		server:  s,
		ws:      ws,
		conn:    conn,
		sink:    sink,
		replies: make(chan serverFrame, s.connectionBufferSize),
		done:    make(chan struct{}),
	}

	s.log.Info("Connection established", "conn_id", conn.ID, "user_id", conn.UserID)
	go client.writePump()
	client.readLoop(r.Context())
}

type wsClient struct {
	server  *Server
	ws      *websocket.Conn
	conn    domain.Connection
	sink    *ConnSink
	replies chan serverFrame
	done    chan struct{}
}

// readLoop decodes client frames until the transport errors out. It owns
// connection teardown.
func (c *wsClient) readLoop(ctx context.Context) {
	defer c.teardown()

	c.ws.SetReadLimit(int64(c.server.maxFrameBytes))
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame clientFrame
		if err := c.ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.server.log.Warn("Websocket read failed", "conn_id", c.conn.ID, "error", err)
			}
			return
		}
		c.handleFrame(ctx, frame)
	}
}

func (c *wsClient) handleFrame(ctx context.Context, frame clientFrame) {
	switch frame.Type {
	case "send_message":
		msg, err := c.server.chat.Send(ctx, c.conn.UserID,
			domain.UserID(frame.RecipientID), frame.Content)
		if err != nil {
			c.reply(errorFrame(err))
			return
		}
		// The ack is the request/response confirmation; the sender's own
		// sessions additionally get the regular room push.
		c.reply(messageFrame("ack", msg))

	case "join":
		if err := c.server.rooms.Join(c.conn, c.target(frame)); err != nil {
			c.reply(errorFrame(err))
		}

	case "leave":
		if err := c.server.rooms.Leave(c.conn, c.target(frame)); err != nil {
			c.reply(errorFrame(err))
		}

	default:
		c.reply(errorFrame(fmt.Errorf("unknown frame type %q", frame.Type)))
	}
}

// target resolves the room a join/leave aims at. A missing user_id means
// the client's own room; a mismatching one is passed through so the room
// manager can reject it.
func (c *wsClient) target(frame clientFrame) domain.UserID {
	if frame.UserID == 0 {
		return c.conn.UserID
	}
	return domain.UserID(frame.UserID)
}

func (c *wsClient) reply(frame serverFrame) {
	select {
	case c.replies <- frame:
	case <-c.done:
	}
}

// writePump is the only goroutine writing to the websocket. It serializes
// room pushes, read-loop replies, and keepalive pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case e := <-c.sink.Events():
			if !c.write(toServerFrame(e)) {
				return
			}
		case frame := <-c.replies:
			if !c.write(frame) {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) write(frame serverFrame) bool {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(frame); err != nil {
		c.server.log.Debug("Websocket write failed", "conn_id", c.conn.ID, "error", err)
		return false
	}
	return true
}

func (c *wsClient) teardown() {
	close(c.done)
	c.server.rooms.OnDisconnect(c.conn.ID)
	c.server.registry.Unregister(c.conn.ID)
	_ = c.ws.Close()
	c.server.log.Info("Connection closed", "conn_id", c.conn.ID, "user_id", c.conn.UserID)
}

func toServerFrame(e event.DomainEvent) serverFrame {
	switch evt := e.(type) {
	case event.MessageDelivered:
		return deliveredFrame(evt)
	case event.PresenceChanged:
		return statusFrame(evt)
	default:
		return errorFrame(fmt.Errorf("unhandled event %T", e))
	}
}
