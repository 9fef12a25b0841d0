// Package gateway is the transport boundary of the service: the REST
// surface for auth, contacts, history, profile and search, plus the
// websocket endpoint carrying live message delivery.
package gateway

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"direct-chat/auth"
	"direct-chat/contract"
	"direct-chat/services"
)

type Server struct {
	log                  *slog.Logger
	auth                 services.IAuthService
	chat                 services.IChatService
	tokens               *auth.TokenManager
	registry             contract.ISessionRegistry
	rooms                contract.IRoomManager
	upgrader             websocket.Upgrader
	connectionBufferSize int
	maxFrameBytes        int
}

// Options bundles the gateway tunables so NewServer doesn't grow a
// parameter per knob.
type Options struct {
	ConnectionBufferSize int
	MaxFrameBytes        int
	AllowedOrigin        string
}

func NewServer(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, tokens *auth.TokenManager,
	registry contract.ISessionRegistry, rooms contract.IRoomManager,
	opts Options) *Server {
	return &Server{
		log:      log,
		auth:     authService,
		chat:     chatService,
		tokens:   tokens,
		registry: registry,
		rooms:    rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigin),
		},
		connectionBufferSize: opts.ConnectionBufferSize,
		maxFrameBytes:        opts.MaxFrameBytes,
	}
}

// Routes wires the public and token-protected endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)

	protected := func(h http.HandlerFunc) http.Handler {
		return s.tokens.Middleware(h)
	}
	mux.Handle("GET /api/contacts", protected(s.handleContacts))
	mux.Handle("POST /api/contacts/add", protected(s.handleAddContact))
	mux.Handle("GET /api/messages/{contactID}", protected(s.handleHistory))
	mux.Handle("GET /api/profile", protected(s.handleProfile))
	mux.Handle("PUT /api/profile", protected(s.handleUpdateProfile))
	mux.Handle("GET /api/search", protected(s.handleSearch))
	mux.Handle("GET /ws", protected(s.handleWS))

	return mux
}

// originChecker allows a single configured origin, or everything when the
// configuration leaves it empty (development setups).
func originChecker(allowed string) func(r *http.Request) bool {
	if allowed == "" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return r.Header.Get("Origin") == allowed
	}
}
