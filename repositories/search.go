//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_user_search.go -package=mocks
package repositories

import (
	"context"
	"strconv"
	"strings"

	"github.com/blugelabs/bluge"

	"direct-chat/domain"
)

type IUserSearch interface {
	Index(user domain.User) error
	Search(ctx context.Context, term string, limit int) ([]domain.UserID, error)
}

// UserSearch maintains a Bluge full-text index over usernames and emails.
// It is rebuilt incrementally: signup and profile edits call Index, which
// upserts the user's document. Search matches substrings the way the
// address-book search box expects.
type UserSearch struct {
	writer *bluge.Writer
}

func NewUserSearch(writer *bluge.Writer) *UserSearch {
	return &UserSearch{writer: writer}
}

func (s *UserSearch) Index(user domain.User) error {
	docID := strconv.FormatInt(int64(user.ID), 10)
	doc := bluge.NewDocument(docID).
		AddField(bluge.NewTextField("username", user.Username).StoreValue()).
		AddField(bluge.NewTextField("email", user.Email))
	return s.writer.Update(doc.ID(), doc)
}

func (s *UserSearch) Search(ctx context.Context, term string, limit int) ([]domain.UserID, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	// Wildcard on the username mirrors the old "username contains term"
	// behavior; the match clause additionally catches full email tokens.
	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewWildcardQuery("*" + term + "*").SetField("username")).
		AddShould(bluge.NewMatchQuery(term).SetField("email"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []domain.UserID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if n, convErr := strconv.ParseInt(string(value), 10, 64); convErr == nil {
					ids = append(ids, domain.UserID(n))
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
