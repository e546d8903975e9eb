package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ecole-console/internal/api"
	"github.com/JonMunkholm/ecole-console/internal/config"
	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/history"
	"github.com/JonMunkholm/ecole-console/internal/logging"
	"github.com/JonMunkholm/ecole-console/internal/session"
	"github.com/JonMunkholm/ecole-console/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"api", cfg.API.BaseURL,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"history_db", cfg.Database.URL != "",
	)
	slog.Debug("effective configuration", "config", cfg.String())

	client, err := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		slog.Error("failed to create API client", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, closeStore, err := openHistory(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open import history", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service := core.NewService(client, store, cfg.Import)
	sessions := session.NewManager(cfg.Session)
	server := web.NewServer(cfg, client, service, sessions)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartHistoryPurge(jobCtx, core.PurgeConfig{
		RetentionDays: cfg.History.RetentionDays,
		CheckInterval: cfg.History.CheckInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		limiter := service.Limiter()
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for imports to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openHistory connects the Postgres history store, or falls back to
// memory when no database is configured.
func openHistory(ctx context.Context, cfg config.DatabaseConfig) (core.HistoryStore, func(), error) {
	if cfg.URL == "" {
		slog.Info("no database configured, import history kept in memory")
		return history.NewMemoryStore(0), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	store := history.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}
