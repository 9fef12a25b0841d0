// Package runtime owns the shared mutable state of the live-delivery core:
// the session registry, the room membership manager, and the dispatcher.
// It orchestrates delivery without containing storage or transport logic.
package runtime

import (
	"sync"

	"direct-chat/contract"
	"direct-chat/domain"
)

type session struct {
	userID domain.UserID
	sink   contract.EventSink
}

// SessionRegistry maps authenticated users to their currently open
// connections. One user may hold several connections at once (one per
// tab); each carries its own sink.
//
// All methods are safe for concurrent use. Readers only ever see snapshot
// copies, so a connection closing mid-fanout cannot corrupt an iteration.
type SessionRegistry struct {
	mu     sync.RWMutex
	byConn map[domain.ConnectionID]session
	byUser map[domain.UserID]map[domain.ConnectionID]struct{}
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byConn: make(map[domain.ConnectionID]session),
		byUser: make(map[domain.UserID]map[domain.ConnectionID]struct{}),
	}
}

// Register adds a connection to its user's set. Re-registering the same
// connection is idempotent; the sink of the first registration wins.
func (r *SessionRegistry) Register(conn domain.Connection, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[conn.ID]; ok {
		return
	}
	r.byConn[conn.ID] = session{userID: conn.UserID, sink: sink}

	if _, ok := r.byUser[conn.UserID]; !ok {
		r.byUser[conn.UserID] = make(map[domain.ConnectionID]struct{})
	}
	r.byUser[conn.UserID][conn.ID] = struct{}{}
}

// Unregister removes a connection from whatever user set it belongs to.
// No-op when the connection was never registered or is already gone, so
// teardown paths may call it unconditionally.
func (r *SessionRegistry) Unregister(connID domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)

	if conns, ok := r.byUser[s.userID]; ok {
		delete(conns, connID)
		// No empty sets left behind, the user map would otherwise grow
		// with every short-lived login.
		if len(conns) == 0 {
			delete(r.byUser, s.userID)
		}
	}
}

// SinksFor returns a snapshot of the sinks of every live connection of a
// user. The internal set is never exposed.
func (r *SessionRegistry) SinksFor(userID domain.UserID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(conns))
	for id := range conns {
		if s, exists := r.byConn[id]; exists {
			sinks = append(sinks, s.sink)
		}
	}
	return sinks
}

// sinkOf resolves one connection's sink; used by the room manager when
// fanning out to room members.
func (r *SessionRegistry) sinkOf(connID domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byConn[connID]
	if !ok {
		return nil, false
	}
	return s.sink, true
}

func (r *SessionRegistry) IsOnline(userID domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}
