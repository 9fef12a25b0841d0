package repositories

import (
	"context"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/stretchr/testify/require"

	"direct-chat/domain"
)

func newTestUserSearch(t *testing.T) *UserSearch {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewUserSearch(writer)
}

func Test_Search_Matches_Username_Substring(t *testing.T) {
	req := require.New(t)
	search := newTestUserSearch(t)
	ctx := context.Background()

	req.NoError(search.Index(domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}))
	req.NoError(search.Index(domain.User{ID: 2, Username: "malicia", Email: "malicia@example.com"}))
	req.NoError(search.Index(domain.User{ID: 3, Username: "bob", Email: "bob@example.com"}))

	// When searching for a fragment both usernames share
	ids, err := search.Search(ctx, "alic", 10)
	req.NoError(err)

	// Then both match, Bob does not
	req.ElementsMatch([]domain.UserID{1, 2}, ids)
}

func Test_Search_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	search := newTestUserSearch(t)

	req.NoError(search.Index(domain.User{ID: 1, Username: "Alice", Email: "alice@example.com"}))

	ids, err := search.Search(context.Background(), "ALICE", 10)
	req.NoError(err)
	req.Equal([]domain.UserID{1}, ids)
}

func Test_Search_Blank_Term_Returns_Nothing(t *testing.T) {
	req := require.New(t)
	search := newTestUserSearch(t)

	req.NoError(search.Index(domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}))

	ids, err := search.Search(context.Background(), "   ", 10)
	req.NoError(err)
	req.Empty(ids)
}

func Test_Index_Upserts_On_Profile_Change(t *testing.T) {
	req := require.New(t)
	search := newTestUserSearch(t)
	ctx := context.Background()

	req.NoError(search.Index(domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}))
	// When the user renames
	req.NoError(search.Index(domain.User{ID: 1, Username: "alicia", Email: "alicia@example.com"}))

	// Then the old name no longer matches
	ids, err := search.Search(ctx, "alice", 10)
	req.NoError(err)
	req.Empty(ids)

	// And the new one does, exactly once
	ids, err = search.Search(ctx, "alicia", 10)
	req.NoError(err)
	req.Equal([]domain.UserID{1}, ids)
}

func Test_Search_Honors_The_Limit(t *testing.T) {
	req := require.New(t)
	search := newTestUserSearch(t)

	for i := int64(1); i <= 5; i++ {
		req.NoError(search.Index(domain.User{
			ID:       domain.UserID(i),
			Username: "member",
			Email:    "member@example.com",
		}))
	}

	ids, err := search.Search(context.Background(), "member", 3)
	req.NoError(err)
	req.Len(ids, 3)
}
