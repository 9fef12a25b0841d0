package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"direct-chat/auth"
	"direct-chat/gateway"
	"direct-chat/moderation"
	"direct-chat/observability"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"direct-chat/runtime/workers"
	"direct-chat/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the server lifecycle. Keeping
// it separate from main ensures the defers (database close, index close)
// execute before the process exits, and keeps the wiring testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories
	messageRepository, err := repositories.NewMessageRepository(db, log)
	if err != nil {
		return fmt.Errorf("message repository: %w", err)
	}
	defer func() { _ = messageRepository.Close() }()

	userRepository, err := repositories.NewUserRepository(db)
	if err != nil {
		return fmt.Errorf("user repository: %w", err)
	}
	defer func() { _ = userRepository.Close() }()

	contactRepository := repositories.NewContactRepository(db)
	userSearch := repositories.NewUserSearch(blugeWriter)

	// 4. Moderation
	lists, err := runtime.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored word lists: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(lists.Words), strings.Join(lists.Languages, ",")))

	mask, err := maskRune(config.CensoredMask)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(lists.Words, mask)
	if err != nil {
		return fmt.Errorf("moderator: %w", err)
	}

	// 5. Delivery core
	registry := runtime.NewSessionRegistry()
	rooms := runtime.NewRoomManager(log, registry, config.PresenceBufferSize)
	dispatcher := runtime.NewDispatcher(log, messageRepository, rooms, moderator,
		config.PersistTimeout, config.DeliveryTimeout, config.MaxContentLength)

	// 6. Services & Gateway
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(log, userRepository, userSearch, tokens)
	chatService := services.NewChatService(dispatcher, messageRepository, userRepository,
		contactRepository, userSearch, registry, config.SearchLimit)

	server := gateway.NewServer(log, authService, chatService, tokens, registry, rooms,
		gateway.Options{
			ConnectionBufferSize: config.ConnectionBufferSize,
			MaxFrameBytes:        config.MaxFrameBytes,
			AllowedOrigin:        config.AllowedOrigin,
		})

	// 7. Supervision
	monitor, err := observability.NewMonitor()
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewPresenceWorker(log, rooms, rooms.Presence(), config.DeliveryTimeout),
		workers.NewHeartbeatWorker(log, monitor, config.HeartbeatInterval),
		workers.NewStorageGCWorker(log, db, config.StorageGCInterval),
	)

	// 8. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 9. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	httpServer := &http.Server{Handler: server.Routes()}
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", address, "at", time.Now().UTC())
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 10. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 11. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	sup.Stop()
	<-supervisorDone
	log.Info("Program stopped cleanly")
	return nil
}

func maskRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSORED_MASK must be a single character, got %q", str)
	}
	return r[0], nil
}
