package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/realtime"
	"chat-relay/repositories"
	"chat-relay/services"
	"chat-relay/transport"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern ensures 'defer' statements (like database cleanup) execute before the
// process exits, and keeps the wiring testable outside of main().
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Realtime core
	local := transport.NewLocal(log, []byte(config.SigningKey))
	monitor := observability.NewPublishMonitor()
	publisher := realtime.NewPublisher(log, local, config.PushTimeout, monitor)
	memberships := internal.NewMembershipStore()
	statuses := repositories.NewStatusRepository(db, log)
	tracker := realtime.NewPresenceTracker(log, publisher, local, memberships, statuses, config.PushTimeout)
	builder := realtime.NewCapabilityBuilder(config.GrantTTL)
	authority := realtime.NewTokenAuthority(log, memberships, builder, local, config.PushTimeout)
	service := services.NewRealtimeService(log, publisher, tracker, authority)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. HTTP Server
	server := NewServer(log, service, local, tracker, memberships, monitor)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:    address,
		Handler: server.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}
