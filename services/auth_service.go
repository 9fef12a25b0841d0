//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"

	"direct-chat/auth"
	"direct-chat/errors"
	"direct-chat/repositories"
)

type IAuthService interface {
	Register(ctx context.Context, username, email, password string) (auth.Token, error)
	Login(ctx context.Context, username, password string) (auth.Token, error)
}

// AuthService implements signup and login on top of the user repository.
// Passwords are hashed with Argon2id in this layer so the repository never
// sees plain text.
type AuthService struct {
	log    *slog.Logger
	users  repositories.IUserRepository
	search repositories.IUserSearch
	tokens *auth.TokenManager
}

func NewAuthService(log *slog.Logger, users repositories.IUserRepository,
	search repositories.IUserSearch, tokens *auth.TokenManager) *AuthService {
	return &AuthService{log: log, users: users, search: search, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (auth.Token, error) {
	req := auth.RegisterRequest{Username: username, Email: email, Password: password}
	if err := auth.ValidateRegister(req); err != nil {
		if goerrors.Is(err, errors.ErrInvalidPassword) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, email, hashed)
	if err != nil {
		return "", err
	}

	// Index failures don't fail the signup; the account exists, it is
	// just not findable through search until the next profile edit.
	if err := s.search.Index(user); err != nil {
		s.log.Warn("Search indexing failed for new user", "user_id", user.ID, "error", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return auth.Token(token), nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (auth.Token, error) {
	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		// Generic error to prevent user enumeration.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, account.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(repositories.ToUser(account))
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return auth.Token(token), nil
}
