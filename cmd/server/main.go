/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the taproom point-of-sale server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment, optional config.env)
  2. Parse command-line flags (override configuration)
  3. Build the logger
  4. Open the snapshot store selected by STORE_DRIVER
  5. Open the session (restores the last snapshot)
  6. Configure HTTP router
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides HTTP_PORT)
  -db      SQLite database path (forces the sqlite driver)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/taproom.db"

  # Run against Redis
  STORE_DRIVER=redis REDIS_ADDR=localhost:6379 ./server

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - config/config.go: Environment keys and defaults
  - api/server.go: Router configuration
  - session/session.go: Snapshot lifecycle
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dongoyo/taproom/api"
	"github.com/dongoyo/taproom/config"
	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/logger"
	"github.com/dongoyo/taproom/session"
	"github.com/dongoyo/taproom/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Env: "production", Level: "error"})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides HTTP_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (forces the sqlite driver)")
	flag.Parse()
	applyFlags(cfg, *port, *dbPath)

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// applyFlags lets command-line flags win over configuration.
func applyFlags(cfg *config.Config, port int, dbPath string) {
	if port > 0 {
		cfg.HTTP.Port = port
	}
	if dbPath != "" {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.SQLitePath = dbPath
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	// Initialize store
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	sess, err := session.Open(ctx, ledger.New(), st, log.With().Str("component", "session").Logger())
	if err != nil {
		return err
	}

	handler := api.NewHandler(sess, log.With().Str("component", "api").Logger(), cfg.Report.Location())
	if auditor, ok := st.(store.Auditor); ok {
		handler.Audit = auditor
	}
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		Production:         cfg.IsProduction(),
	})

	// Create server
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("app", cfg.App.Name).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
