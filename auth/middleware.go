package auth

import (
	"context"
	"net/http"
	"strings"

	"direct-chat/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is what the middleware attaches to the request context after a
// successful token check. Handlers read it and never trust ids from the
// request body.
type Identity struct {
	UserID   domain.UserID
	Username string
}

// Middleware validates the Bearer token on protected routes and injects
// the caller's identity into the request context. The websocket endpoint
// also accepts the token as a query parameter since browsers cannot set
// headers on websocket dials.
func (t *TokenManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			tokenStr = r.URL.Query().Get("token")
		}
		if tokenStr == "" {
			http.Error(w, "authorization token is missing", http.StatusUnauthorized)
			return
		}

		claims, err := t.Validate(tokenStr)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		identity := Identity{UserID: claims.UserID, Username: claims.Username}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the authenticated identity; ok is false on routes
// the middleware never saw.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
