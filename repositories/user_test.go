package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"direct-chat/errors"
)

func newTestUserRepository(t *testing.T) *UserRepository {
	t.Helper()
	repo, err := NewUserRepository(newTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func Test_CreateUser_And_Lookups(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	// When creating an account
	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "argon-hash")
	req.NoError(err)
	req.Equal("alice", user.Username)
	req.NotZero(user.ID)

	// Then it is readable by id
	byID, err := repo.GetByID(ctx, user.ID)
	req.NoError(err)
	req.Equal(user, byID)

	// And by username, hash included
	account, err := repo.GetByUsername(ctx, "alice")
	req.NoError(err)
	req.Equal(user.ID, account.ID)
	req.Equal("argon-hash", account.PasswordHash)
	req.False(account.CreatedAt.IsZero())
}

func Test_CreateUser_Enforces_Uniqueness(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "alice@example.com", "h")
	req.NoError(err)

	// Then a duplicate username is rejected
	_, err = repo.CreateUser(ctx, "alice", "other@example.com", "h")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	// And a duplicate email too
	_, err = repo.CreateUser(ctx, "alice2", "alice@example.com", "h")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_GetByID_Unknown_User(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)

	_, err := repo.GetByID(context.Background(), 404)
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = repo.GetByUsername(context.Background(), "nobody")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_UpdateProfile_Moves_The_Indexes(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "alice@example.com", "h")
	req.NoError(err)

	// When renaming the account
	updated, err := repo.UpdateProfile(ctx, user.ID, "alicia", "alicia@example.com")
	req.NoError(err)
	req.Equal("alicia", updated.Username)
	req.Equal("alicia@example.com", updated.Email)

	// Then the new username resolves
	account, err := repo.GetByUsername(ctx, "alicia")
	req.NoError(err)
	req.Equal(user.ID, account.ID)

	// And the old one is free again
	_, err = repo.GetByUsername(ctx, "alice")
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = repo.CreateUser(ctx, "alice", "new@example.com", "h")
	req.NoError(err)
}

func Test_UpdateProfile_Rejects_Taken_Username(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "alice@example.com", "h")
	req.NoError(err)
	_, err = repo.CreateUser(ctx, "bob", "bob@example.com", "h")
	req.NoError(err)

	// When Alice tries to take Bob's username
	_, err = repo.UpdateProfile(ctx, alice.ID, "bob", "alice@example.com")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	// Then her account is unchanged
	account, err := repo.GetByUsername(ctx, "alice")
	req.NoError(err)
	req.Equal(alice.ID, account.ID)
}
