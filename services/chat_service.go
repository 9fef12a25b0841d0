//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"

	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/errors"
	"direct-chat/repositories"
)

type IChatService interface {
	Send(ctx context.Context, senderID, recipientID domain.UserID, content string) (domain.Message, error)
	History(ctx context.Context, userID, contactID domain.UserID) ([]domain.Message, error)
	Contacts(ctx context.Context, userID domain.UserID) ([]domain.Summary, error)
	AddContact(ctx context.Context, userID, contactID domain.UserID) (domain.Summary, error)
	Profile(ctx context.Context, userID domain.UserID) (domain.User, error)
	UpdateProfile(ctx context.Context, userID domain.UserID, username, email string) (domain.User, error)
	SearchUsers(ctx context.Context, term string) ([]domain.Summary, error)
}

// ChatService is the application facade the gateway talks to. Messaging
// goes through the dispatcher; everything else is plain request/response
// against the repositories.
type ChatService struct {
	dispatcher  contract.IDispatcher
	messages    repositories.IMessageRepository
	users       repositories.IUserRepository
	contacts    repositories.IContactRepository
	search      repositories.IUserSearch
	registry    contract.ISessionRegistry
	searchLimit int
}

func NewChatService(dispatcher contract.IDispatcher, messages repositories.IMessageRepository,
	users repositories.IUserRepository, contacts repositories.IContactRepository,
	search repositories.IUserSearch, registry contract.ISessionRegistry,
	searchLimit int) *ChatService {
	return &ChatService{
		dispatcher:  dispatcher,
		messages:    messages,
		users:       users,
		contacts:    contacts,
		search:      search,
		registry:    registry,
		searchLimit: searchLimit,
	}
}

func (s *ChatService) Send(ctx context.Context, senderID, recipientID domain.UserID,
	content string) (domain.Message, error) {
	return s.dispatcher.Send(ctx, senderID, recipientID, content)
}

func (s *ChatService) History(ctx context.Context, userID, contactID domain.UserID) ([]domain.Message, error) {
	if contactID == 0 {
		return nil, fmt.Errorf("%w: contact is required", errors.ErrInvalidRequest)
	}
	return s.messages.ListConversation(ctx, userID, contactID)
}

func (s *ChatService) Contacts(ctx context.Context, userID domain.UserID) ([]domain.Summary, error) {
	ids, err := s.contacts.ListContacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.Summary, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			// A dangling edge is skipped, not fatal; the contact list
			// should survive one corrupt entry.
			continue
		}
		summaries = append(summaries, s.toSummary(user))
	}
	return summaries, nil
}

func (s *ChatService) AddContact(ctx context.Context, userID, contactID domain.UserID) (domain.Summary, error) {
	user, err := s.users.GetByID(ctx, contactID)
	if err != nil {
		return domain.Summary{}, err
	}
	if err := s.contacts.AddContact(ctx, userID, contactID); err != nil {
		return domain.Summary{}, err
	}
	return s.toSummary(user), nil
}

func (s *ChatService) Profile(ctx context.Context, userID domain.UserID) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *ChatService) UpdateProfile(ctx context.Context, userID domain.UserID,
	username, email string) (domain.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		return domain.User{}, err
	}
	// Same policy as signup: the profile change sticks even if the search
	// index lags behind.
	_ = s.search.Index(user)
	return user, nil
}

func (s *ChatService) SearchUsers(ctx context.Context, term string) ([]domain.Summary, error) {
	ids, err := s.search.Search(ctx, term, s.searchLimit)
	if err != nil {
		return nil, err
	}

	var summaries []domain.Summary
	for _, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, s.toSummary(user))
	}
	return summaries, nil
}

func (s *ChatService) toSummary(user domain.User) domain.Summary {
	return domain.Summary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Online:   s.registry.IsOnline(user.ID),
	}
}
