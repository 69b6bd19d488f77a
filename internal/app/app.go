// Package app собирает все зависимости сервиса Moodme и управляет
// жизненным циклом HTTP-сервера.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"

	"github.com/moodme/moodme-backend/internal/artifactstore"
	"github.com/moodme/moodme-backend/internal/cache"
	"github.com/moodme/moodme-backend/internal/config"
	"github.com/moodme/moodme-backend/internal/lib/jwt"
	"github.com/moodme/moodme-backend/internal/migrations"
	authservice "github.com/moodme/moodme-backend/internal/services/auth"
	modelservice "github.com/moodme/moodme-backend/internal/services/model"
	"github.com/moodme/moodme-backend/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := ensurePrivateKeyExists(cfg.PrivateKeyPath); err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	artifacts, err := artifactstore.New(ctx, cfg.S3Storage)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker, logger)
	modelService := modelservice.NewModelService(db, artifacts, cacheRedis, logger, cfg.UploadTimeout)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.AppVersion, authService, modelService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// ensurePrivateKeyExists проверяет наличие приватного ключа при старте:
// без него сервис не должен подниматься.
func ensurePrivateKeyExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("private key not found at %s", path)
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
