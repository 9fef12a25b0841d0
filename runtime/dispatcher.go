package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/moderation"
	"direct-chat/repositories"
)

// Dispatcher is the ordering-sensitive core: it persists a message, then
// fans the persisted record out to the recipient's and the sender's rooms.
//
// Persistence is the durability boundary. A message that failed to persist
// is never delivered, so live-only peers can never see a message that a
// reconnect or a history fetch would not show. The payload pushed to rooms
// is built from the stored record, store-assigned id and timestamp
// included, never from the inbound request.
type Dispatcher struct {
	log              *slog.Logger
	store            repositories.IMessageRepository
	rooms            contract.IRoomManager
	moderator        *moderation.Moderator
	persistTimeout   time.Duration
	deliveryTimeout  time.Duration
	maxContentLength int
}

func NewDispatcher(log *slog.Logger, store repositories.IMessageRepository,
	rooms contract.IRoomManager, moderator *moderation.Moderator,
	persistTimeout, deliveryTimeout time.Duration, maxContentLength int) *Dispatcher {
	return &Dispatcher{
		log:              log,
		store:            store,
		rooms:            rooms,
		moderator:        moderator,
		persistTimeout:   persistTimeout,
		deliveryTimeout:  deliveryTimeout,
		maxContentLength: maxContentLength,
	}
}

// Send validates, persists, then delivers. Messages of a single sender are
// persisted and delivered in the order their Send calls complete; there is
// no cross-sender ordering and no global lock, concurrency is scoped to
// the rooms a message touches.
func (d *Dispatcher) Send(ctx context.Context, senderID, recipientID domain.UserID,
	content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if recipientID == 0 {
		return domain.Message{}, fmt.Errorf("%w: recipient is required", errors.ErrInvalidRequest)
	}
	if content == "" {
		return domain.Message{}, fmt.Errorf("%w: content is required", errors.ErrInvalidRequest)
	}
	if d.maxContentLength > 0 && len(content) > d.maxContentLength {
		return domain.Message{}, fmt.Errorf("%w: content exceeds %d bytes",
			errors.ErrInvalidRequest, d.maxContentLength)
	}

	content = d.censor(senderID, content)

	// The write is bounded; a timed-out persist is a persistence failure
	// like any other and nothing gets delivered.
	persistCtx, cancel := context.WithTimeout(ctx, d.persistTimeout)
	defer cancel()

	msg, err := d.store.InsertMessage(persistCtx, senderID, recipientID, content)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	d.deliver(ctx, domain.RoomFor(msg.RecipientID), msg)
	if msg.SenderID != msg.RecipientID {
		// The sender's own other sessions see the sent message too.
		d.deliver(ctx, domain.RoomFor(msg.SenderID), msg)
	}
	return msg, nil
}

// deliver pushes the persisted message to every connection currently in
// the room. Per-connection failures (closed socket, slow consumer) are
// logged and skipped; they never abort delivery to the remaining members
// and never surface to the sender.
func (d *Dispatcher) deliver(ctx context.Context, roomID domain.RoomID, msg domain.Message) {
	sinks := d.rooms.SinksFor(roomID)
	for _, sink := range sinks {
		evt := event.MessageDelivered{
			ID:          msg.ID,
			SenderID:    msg.SenderID,
			RecipientID: msg.RecipientID,
			Content:     msg.Content,
			At:          msg.Timestamp,
			TargetRoom:  roomID,
		}
		sinkCtx, cancel := context.WithTimeout(ctx, d.deliveryTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			d.log.Warn("Push failed, peer misses live delivery",
				"room", roomID, "message_id", msg.ID, "error", err)
		}
		cancel()
	}
}

// censor runs the moderation pass before persistence so the stored record
// and every push carry the same canonical content.
func (d *Dispatcher) censor(senderID domain.UserID, content string) string {
	if d.moderator == nil {
		return content
	}
	sanitized, found := d.moderator.Censor(content)
	if len(found) > 0 {
		info := whatlanggo.Detect(content)
		d.log.Warn("Censored message content",
			"sender", senderID,
			"words", len(found),
			"lang", info.Lang.Iso6391())
	}
	return sanitized
}
