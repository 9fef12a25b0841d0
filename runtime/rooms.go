package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
)

// RoomManager associates live connections with per-user delivery rooms.
// A connection may only ever join the room of its own authenticated user;
// the target id a client declares is re-validated here and never trusted.
//
// Join and Leave emit presence notifications through a buffered channel
// drained by the presence worker. Emission is best-effort: a full channel
// drops the notice and the membership mutation still commits.
type RoomManager struct {
	mu       sync.RWMutex
	log      *slog.Logger
	registry *SessionRegistry
	members  map[domain.RoomID]map[domain.ConnectionID]struct{}
	presence chan event.DomainEvent
}

func NewRoomManager(log *slog.Logger, registry *SessionRegistry, presenceBuffer int) *RoomManager {
	return &RoomManager{
		log:      log,
		registry: registry,
		members:  make(map[domain.RoomID]map[domain.ConnectionID]struct{}),
		presence: make(chan event.DomainEvent, presenceBuffer),
	}
}

// Presence exposes the notification channel for the presence worker.
func (m *RoomManager) Presence() <-chan event.DomainEvent {
	return m.presence
}

// Join adds the connection to room "user_<target>". Joining twice is
// idempotent; a target other than the connection's own identity fails with
// ErrUnauthorizedJoin and leaves the target room untouched.
func (m *RoomManager) Join(conn domain.Connection, target domain.UserID) error {
	if target != conn.UserID {
		m.log.Warn("join rejected: identity mismatch",
			"conn_id", conn.ID, "authenticated", conn.UserID, "target", target)
		return errors.ErrUnauthorizedJoin
	}
	roomID := domain.RoomFor(target)

	m.mu.Lock()
	if _, ok := m.members[roomID]; !ok {
		m.members[roomID] = make(map[domain.ConnectionID]struct{})
	}
	_, already := m.members[roomID][conn.ID]
	m.members[roomID][conn.ID] = struct{}{}
	m.mu.Unlock()

	if !already {
		m.notify(event.PresenceChanged{
			UserID:   conn.UserID,
			Username: conn.Username,
			Entered:  true,
			At:       time.Now().UTC(),
		})
	}
	return nil
}

// Leave removes the membership; no-op when the connection is not a member.
func (m *RoomManager) Leave(conn domain.Connection, target domain.UserID) error {
	if target != conn.UserID {
		return errors.ErrUnauthorizedJoin
	}
	roomID := domain.RoomFor(target)

	m.mu.Lock()
	removed := m.remove(roomID, conn.ID)
	m.mu.Unlock()

	if removed {
		m.notify(event.PresenceChanged{
			UserID:   conn.UserID,
			Username: conn.Username,
			Entered:  false,
			At:       time.Now().UTC(),
		})
	}
	return nil
}

// OnDisconnect removes the connection from every room it belongs to.
// Invoked by the gateway on transport close, including abrupt ones where
// no explicit leave was ever sent. Idempotent.
func (m *RoomManager) OnDisconnect(connID domain.ConnectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for roomID := range m.members {
		m.remove(roomID, connID)
	}
}

// remove expects m.mu to be held. Reports whether the connection was a member.
func (m *RoomManager) remove(roomID domain.RoomID, connID domain.ConnectionID) bool {
	conns, ok := m.members[roomID]
	if !ok {
		return false
	}
	if _, member := conns[connID]; !member {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(m.members, roomID)
	}
	return true
}

// SinksFor resolves the current members of a room into their sinks.
// Returns a fresh slice; an empty room yields nil, which delivery treats
// as "nobody listening", not as an error.
func (m *RoomManager) SinksFor(roomID domain.RoomID) []contract.EventSink {
	m.mu.RLock()
	conns := make([]domain.ConnectionID, 0, len(m.members[roomID]))
	for id := range m.members[roomID] {
		conns = append(conns, id)
	}
	m.mu.RUnlock()

	var sinks []contract.EventSink
	for _, id := range conns {
		// A connection can unregister between the two lookups; it is
		// simply skipped.
		if sink, ok := m.registry.sinkOf(id); ok {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

func (m *RoomManager) notify(e event.DomainEvent) {
	select {
	case m.presence <- e:
	default:
		m.log.Debug(fmt.Sprintf("Presence channel full, dropping notice for %s", e.Room()))
	}
}
