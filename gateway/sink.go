package gateway

import (
	"context"
	"fmt"

	"direct-chat/domain/event"
)

// ConnSink bridges the delivery core and one websocket's write pump
// through a buffered channel. Consume is called by the dispatcher and the
// presence worker; the write pump drains Events.
type ConnSink struct {
	events chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{events: make(chan event.DomainEvent, bufferSize)}
}

// Consume hands the event to the connection's write pump. A full buffer
// means this connection is too slow to keep up; the push is dropped and
// reported so the dispatcher can log it as a per-connection failure.
func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("connection buffer full, event dropped")
	}
}

func (s *ConnSink) Events() <-chan event.DomainEvent {
	return s.events
}
