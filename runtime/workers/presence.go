package workers

import (
	"context"
	"log/slog"
	"time"

	"direct-chat/contract"
	"direct-chat/domain/event"
)

// PresenceWorker drains the room manager's presence channel and pushes
// "entered/left the chat" notices to the members of the affected room.
// Everything here is best-effort: a failed push is logged and forgotten,
// and membership mutations never wait on this worker.
type PresenceWorker struct {
	log             *slog.Logger
	rooms           contract.IRoomManager
	presence        <-chan event.DomainEvent
	deliveryTimeout time.Duration
}

func NewPresenceWorker(log *slog.Logger, rooms contract.IRoomManager,
	presence <-chan event.DomainEvent, deliveryTimeout time.Duration) *PresenceWorker {
	return &PresenceWorker{
		log:             log,
		rooms:           rooms,
		presence:        presence,
		deliveryTimeout: deliveryTimeout,
	}
}

func (w *PresenceWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping presence worker")
			return nil
		case evt, ok := <-w.presence:
			if !ok {
				return nil
			}
			w.fanout(ctx, evt)
		}
	}
}

func (w *PresenceWorker) fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.rooms.SinksFor(evt.Room()) {
		sinkCtx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Debug("Presence notice dropped", "room", evt.Room(), "error", err)
		}
		cancel()
	}
}
