//go:generate go run go.uber.org/mock/mockgen -source=contact.go -destination=../mocks/mock_contact_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"direct-chat/domain"
	"direct-chat/errors"
)

type IContactRepository interface {
	AddContact(ctx context.Context, ownerID, contactID domain.UserID) error
	ListContacts(ctx context.Context, ownerID domain.UserID) ([]domain.UserID, error)
}

// ContactRepository stores the directed contact edges of the address book
// under "contact:{owner}:{contact}". Listing one user's contacts is a
// single prefix scan.
type ContactRepository struct {
	db *badger.DB
}

type storedContact struct {
	AddedAt time.Time `json:"added_at"`
}

func NewContactRepository(db *badger.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (c *ContactRepository) AddContact(ctx context.Context, ownerID, contactID domain.UserID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ownerID == contactID {
		return fmt.Errorf("%w: cannot add yourself", errors.ErrInvalidRequest)
	}

	data, err := json.Marshal(storedContact{AddedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		key := contactKey(ownerID, contactID)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrContactExists
		}
		return txn.Set(key, data)
	})
}

func (c *ContactRepository) ListContacts(ctx context.Context, ownerID domain.UserID) ([]domain.UserID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(fmt.Sprintf("contact:%019d:", ownerID))
	var ids []domain.UserID
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := parseID(it.Item().Key()[len(prefix):])
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func contactKey(ownerID, contactID domain.UserID) []byte {
	return []byte(fmt.Sprintf("contact:%019d:%019d", ownerID, contactID))
}
