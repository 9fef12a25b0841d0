package repositories

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"direct-chat/domain"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestMessageRepository(t *testing.T) *MessageRepository {
	t.Helper()
	repo, err := NewMessageRepository(newTestDB(t), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func Test_Insert_Assigns_Id_And_Timestamp(t *testing.T) {
	req := require.New(t)
	repo := newTestMessageRepository(t)
	ctx := context.Background()

	// When persisting a message
	msg, err := repo.InsertMessage(ctx, 1, 2, "hello")
	req.NoError(err)

	// Then the store assigned id and timestamp
	req.Equal(int64(1), msg.ID)
	req.False(msg.Timestamp.IsZero())
	req.Equal(domain.UserID(1), msg.SenderID)
	req.Equal(domain.UserID(2), msg.RecipientID)
	req.Equal("hello", msg.Content)

	// And ids keep increasing
	next, err := repo.InsertMessage(ctx, 1, 2, "again")
	req.NoError(err)
	req.Greater(next.ID, msg.ID)
}

func Test_ListConversation_Covers_Both_Directions_In_Order(t *testing.T) {
	req := require.New(t)
	repo := newTestMessageRepository(t)
	ctx := context.Background()

	// Given an alternating exchange between Alice (1) and Bob (2)
	contents := []string{"hi bob", "hi alice", "how are you?"}
	_, err := repo.InsertMessage(ctx, 1, 2, contents[0])
	req.NoError(err)
	_, err = repo.InsertMessage(ctx, 2, 1, contents[1])
	req.NoError(err)
	_, err = repo.InsertMessage(ctx, 1, 2, contents[2])
	req.NoError(err)

	// When fetching the conversation
	messages, err := repo.ListConversation(ctx, 1, 2)
	req.NoError(err)

	// Then all three messages come back in insertion order
	req.Len(messages, 3)
	for i, msg := range messages {
		req.Equal(contents[i], msg.Content)
	}

	// And the pair order of the query does not matter
	mirrored, err := repo.ListConversation(ctx, 2, 1)
	req.NoError(err)
	req.Equal(messages, mirrored)
}

func Test_ListConversation_Is_Isolated_Per_Pair(t *testing.T) {
	req := require.New(t)
	repo := newTestMessageRepository(t)
	ctx := context.Background()

	_, err := repo.InsertMessage(ctx, 1, 2, "for bob")
	req.NoError(err)
	_, err = repo.InsertMessage(ctx, 1, 3, "for clara")
	req.NoError(err)

	// When fetching Alice/Bob
	messages, err := repo.ListConversation(ctx, 1, 2)
	req.NoError(err)

	// Then Clara's conversation never leaks in
	req.Len(messages, 1)
	req.Equal("for bob", messages[0].Content)
}

func Test_ListConversation_Empty_Pair(t *testing.T) {
	req := require.New(t)
	repo := newTestMessageRepository(t)

	messages, err := repo.ListConversation(context.Background(), 8, 9)
	req.NoError(err)
	req.Empty(messages)
}
