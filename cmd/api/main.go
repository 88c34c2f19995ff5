package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/librarium/internal/api"
	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/config"
	"github.com/baharkarakas/librarium/internal/db"
	"github.com/baharkarakas/librarium/internal/logger"
	"github.com/baharkarakas/librarium/internal/metrics"
	"github.com/baharkarakas/librarium/internal/repository"
	"github.com/baharkarakas/librarium/internal/repository/memory"
	"github.com/baharkarakas/librarium/internal/repository/postgres"
	"github.com/baharkarakas/librarium/internal/services"
	"github.com/baharkarakas/librarium/internal/storage/photos"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("store", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	photoStore, err := photos.New(ctx, cfg)
	if err != nil {
		log.Error("photo store", "kind", cfg.PhotoStore, "err", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	svc := services.New(services.Deps{
		Repos:         repos,
		Tokens:        tokens,
		Photos:        photoStore,
		PhotoMaxBytes: cfg.PhotoMaxBytes,
	})

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{Cfg: cfg, Tokens: tokens, Services: svc})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.Store, "photos", cfg.PhotoStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// openStore returns the repositories selected by APP_STORE and a func releasing them.
func openStore(ctx context.Context, cfg config.Config) (repository.Repositories, func(), error) {
	if cfg.Store == "memory" {
		slog.Warn("using the in-memory store; data is lost on exit")
		return memory.NewRepositories(), func() {}, nil
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	if cfg.Migrate {
		if _, err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repository.Repositories{}, nil, err
		}
	}
	return postgres.NewRepositories(pool), pool.Close, nil
}
