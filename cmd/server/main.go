package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/kevinlin/planning-poker/internal/config"
	"github.com/kevinlin/planning-poker/internal/domain"
	"github.com/kevinlin/planning-poker/internal/logging"
	"github.com/kevinlin/planning-poker/internal/poker"
	"github.com/kevinlin/planning-poker/internal/redis"
	"github.com/kevinlin/planning-poker/internal/server"
	"github.com/kevinlin/planning-poker/internal/version"
)

func setupConfig() *config.Config {
	// .env is a development convenience; absence is not an error
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config, clock clockwork.Clock) domain.SessionStore {
	switch {
	case cfg.RedisURL != "":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		slog.Info("Using Redis session store")
		return redis.NewSessionStore(client, cfg.SessionTTL)

	case cfg.DataFile != "":
		store, err := poker.NewFileStore(cfg.DataFile, clock, cfg.FlushDebounce)
		if err != nil {
			slog.Error("Failed to open session file store", "path", cfg.DataFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Using file session store", "path", cfg.DataFile)
		return store

	default:
		slog.Info("Using in-memory session store")
		return poker.NewMemoryStore()
	}
}

func runGracefulShutdown(srv *server.Server, sweeper *poker.Sweeper, store domain.SessionStore) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		sweeper.Stop()

		if err := store.Close(); err != nil {
			slog.Error("Session store close error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", version.Version,
	)

	store := setupStore(cfg, clock)

	engine := poker.NewEngine(store, clock, cfg.ParticipantActiveWindow, cfg.SessionTTL)

	sweeper := poker.NewSweeper(engine, clock, cfg.SweepInterval)
	sweeper.Start()

	srv := server.NewServer(cfg, engine, store)

	done := runGracefulShutdown(srv, sweeper, store)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
