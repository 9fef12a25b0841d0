package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"direct-chat/domain"
	"direct-chat/errors"
)

func TestHashPassword_Round_Trip(t *testing.T) {
	req := require.New(t)
	password := "Sup3r-Secret-Pass!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.NotEqual(password, hash)

	// Then the right password matches
	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// And the wrong one does not
	match, err = ComparePassword("wrong-password-123!", hash)
	req.NoError(err)
	req.False(match)
}

func TestHashPassword_Salts_Are_Unique(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("Sup3r-Secret-Pass!")
	req.NoError(err)
	second, err := HashPassword("Sup3r-Secret-Pass!")
	req.NoError(err)

	req.NotEqual(first, second)
}

func TestComparePassword_Malformed_Hash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-argon2-hash")
	req.Error(err)
}

func TestValidateRegister(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name    string
		request RegisterRequest
		wantErr bool
	}{
		{
			name: "valid request",
			request: RegisterRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "Sup3r-Secret-Pass!",
			},
		},
		{
			name: "username too short",
			request: RegisterRequest{
				Username: "al",
				Email:    "alice@example.com",
				Password: "Sup3r-Secret-Pass!",
			},
			wantErr: true,
		},
		{
			name: "invalid email",
			request: RegisterRequest{
				Username: "alice",
				Email:    "not-an-email",
				Password: "Sup3r-Secret-Pass!",
			},
			wantErr: true,
		},
		{
			name: "password too short",
			request: RegisterRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "Short1!",
			},
			wantErr: true,
		},
		{
			name: "password without complexity",
			request: RegisterRequest{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "alllowercasenodigits",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.request)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestValidateRegister_Complexity_Uses_Dedicated_Error(t *testing.T) {
	req := require.New(t)

	err := ValidateRegister(RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenoughbutplain",
	})
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestTokenManager_Round_Trip(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret", time.Hour)
	user := domain.User{ID: 7, Username: "alice"}

	token, err := manager.Generate(user)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := manager.Validate(token)
	req.NoError(err)
	req.Equal(domain.UserID(7), claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal("direct-chat", claims.Issuer)
}

func TestTokenManager_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret", -time.Minute)

	token, err := manager.Generate(domain.User{ID: 7, Username: "alice"})
	req.NoError(err)

	_, err = manager.Validate(token)
	req.Error(err)
}

func TestTokenManager_Rejects_Foreign_Signature(t *testing.T) {
	req := require.New(t)
	ours := NewTokenManager("our-secret", time.Hour)
	theirs := NewTokenManager("their-secret", time.Hour)

	token, err := theirs.Generate(domain.User{ID: 7, Username: "mallory"})
	req.NoError(err)

	_, err = ours.Validate(token)
	req.Error(err)
}

func TestMiddleware_Injects_Identity(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret", time.Hour)
	token, err := manager.Generate(domain.User{ID: 7, Username: "alice"})
	req.NoError(err)

	var seen Identity
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		req.True(ok)
		seen = identity
	}))

	// When the token rides the Authorization header
	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.Equal(domain.UserID(7), seen.UserID)
	req.Equal("alice", seen.Username)

	// And when it rides the query parameter (websocket dial)
	r = httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	req.Equal(http.StatusOK, w.Code)
}

func TestMiddleware_Rejects_Missing_And_Invalid_Tokens(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager("test-secret", time.Hour)

	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Fail("handler must not run without a valid token")
	}))

	// When no token at all
	r := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	req.Equal(http.StatusUnauthorized, w.Code)

	// And when the token is garbage
	r = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer not.a.token")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	req.Equal(http.StatusUnauthorized, w.Code)
}
