//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"direct-chat/domain"
)

type IMessageRepository interface {
	// InsertMessage durably records a message and returns it with the
	// store-assigned id and timestamp. Callers must use the returned
	// value, never the inputs, when building delivery payloads.
	InsertMessage(ctx context.Context, senderID, recipientID domain.UserID, content string) (domain.Message, error)
	// ListConversation returns every message between the two users,
	// ascending by timestamp, regardless of direction.
	ListConversation(ctx context.Context, a, b domain.UserID) ([]domain.Message, error)
}

// MessageRepository persists messages in BadgerDB.
// The key is "msg:{lo}:{hi}:{id_padded}" where (lo,hi) is the ordered user
// pair, so one prefix scan covers both directions of a conversation. Ids
// come from a Badger sequence and are 19-digit zero padded: lexicographic
// key order is id order, and ids are assigned at persistence time, which
// makes it insertion order too.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
}

type storedMessage struct {
	ID          int64         `json:"id"`
	SenderID    domain.UserID `json:"sender_id"`
	RecipientID domain.UserID `json:"recipient_id"`
	Content     string        `json:"content"`
	At          time.Time     `json:"at"`
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte("seq:message"), 128)
	if err != nil {
		return nil, err
	}
	return &MessageRepository{db: db, log: log, seq: seq}, nil
}

// Close releases the id sequence lease.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

func (m *MessageRepository) InsertMessage(ctx context.Context, senderID, recipientID domain.UserID,
	content string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}

	next, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, err
	}

	record := storedMessage{
		ID:          int64(next) + 1, // sequences start at 0, ids at 1
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		At:          time.Now().UTC(),
	}
	bytes, err := json.Marshal(record)
	if err != nil {
		return domain.Message{}, err
	}

	key := conversationKey(senderID, recipientID, record.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(record), nil
}

func (m *MessageRepository) ListConversation(ctx context.Context, a, b domain.UserID) ([]domain.Message, error) {
	prefix := conversationPrefix(a, b)

	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record storedMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			messages = append(messages, toMessage(record))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func conversationPrefix(a, b domain.UserID) []byte {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return []byte(fmt.Sprintf("msg:%019d:%019d:", lo, hi))
}

func conversationKey(a, b domain.UserID, id int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", conversationPrefix(a, b), id))
}

func toMessage(record storedMessage) domain.Message {
	return domain.Message{
		ID:          record.ID,
		SenderID:    record.SenderID,
		RecipientID: record.RecipientID,
		Content:     record.Content,
		Timestamp:   record.At,
	}
}
