//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"direct-chat/domain"
	"direct-chat/errors"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
	GetByID(ctx context.Context, id domain.UserID) (domain.User, error)
	UpdateProfile(ctx context.Context, id domain.UserID, username, email string) (domain.User, error)
}

// Account is the repository-level view of a user, password hash included.
// Only the auth service sees it; everything else works with domain.User.
type Account struct {
	ID           domain.UserID `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"password_hash"`
	CreatedAt    time.Time     `json:"created_at"`
}

// UserRepository stores accounts in BadgerDB under three keys: the record
// under "user:id:{id}", plus two unique-index entries "user:name:{username}"
// and "user:email:{email}" holding the id. All three are written in one
// transaction, so uniqueness never tears.
type UserRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewUserRepository(db *badger.DB) (*UserRepository, error) {
	seq, err := db.GetSequence([]byte("seq:user"), 32)
	if err != nil {
		return nil, err
	}
	return &UserRepository{db: db, seq: seq}, nil
}

func (u *UserRepository) Close() error {
	return u.seq.Release()
}

func (u *UserRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	next, err := u.seq.Next()
	if err != nil {
		return domain.User{}, err
	}
	account := Account{
		ID:           domain.UserID(next) + 1,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(account)
	if err != nil {
		return domain.User{}, err
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(nameKey(username)); err == nil {
			return fmt.Errorf("%w: username taken", errors.ErrUserAlreadyExists)
		}
		if _, err := txn.Get(emailKey(email)); err == nil {
			return fmt.Errorf("%w: email taken", errors.ErrUserAlreadyExists)
		}
		if err := txn.Set(idKey(account.ID), data); err != nil {
			return err
		}
		if err := txn.Set(nameKey(username), idValue(account.ID)); err != nil {
			return err
		}
		return txn.Set(emailKey(email), idValue(account.ID))
	})
	if err != nil {
		return domain.User{}, err
	}
	return ToUser(account), nil
}

func (u *UserRepository) GetByUsername(ctx context.Context, username string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	var account Account
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey(username))
		if err != nil {
			return errors.ErrNotFound
		}
		var id domain.UserID
		if err := item.Value(func(val []byte) error {
			id, err = parseID(val)
			return err
		}); err != nil {
			return err
		}
		return u.readAccount(txn, id, &account)
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func (u *UserRepository) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	var account Account
	err := u.db.View(func(txn *badger.Txn) error {
		return u.readAccount(txn, id, &account)
	})
	if err != nil {
		return domain.User{}, err
	}
	return ToUser(account), nil
}

// UpdateProfile renames the account and rewrites the unique indexes in the
// same transaction. Taking a username or email that belongs to someone
// else fails with ErrUserAlreadyExists.
func (u *UserRepository) UpdateProfile(ctx context.Context, id domain.UserID, username, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	var updated Account
	err := u.db.Update(func(txn *badger.Txn) error {
		var account Account
		if err := u.readAccount(txn, id, &account); err != nil {
			return err
		}

		if username != account.Username {
			if err := moveIndex(txn, nameKey(account.Username), nameKey(username), id); err != nil {
				return err
			}
			account.Username = username
		}
		if email != account.Email {
			if err := moveIndex(txn, emailKey(account.Email), emailKey(email), id); err != nil {
				return err
			}
			account.Email = email
		}

		data, err := json.Marshal(account)
		if err != nil {
			return err
		}
		updated = account
		return txn.Set(idKey(id), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return ToUser(updated), nil
}

func (u *UserRepository) readAccount(txn *badger.Txn, id domain.UserID, out *Account) error {
	item, err := txn.Get(idKey(id))
	if err != nil {
		return errors.ErrNotFound
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func moveIndex(txn *badger.Txn, oldKey, newKey []byte, id domain.UserID) error {
	if _, err := txn.Get(newKey); err == nil {
		return errors.ErrUserAlreadyExists
	}
	if err := txn.Delete(oldKey); err != nil {
		return err
	}
	return txn.Set(newKey, idValue(id))
}

func idKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf("user:id:%019d", id))
}

func nameKey(username string) []byte {
	return []byte("user:name:" + username)
}

func emailKey(email string) []byte {
	return []byte("user:email:" + email)
}

func idValue(id domain.UserID) []byte {
	return []byte(strconv.FormatInt(int64(id), 10))
}

func parseID(val []byte) (domain.UserID, error) {
	n, err := strconv.ParseInt(string(val), 10, 64)
	return domain.UserID(n), err
}

// ToUser strips the credential fields off an Account.
func ToUser(account Account) domain.User {
	return domain.User{ID: account.ID, Username: account.Username, Email: account.Email}
}
