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

	"github.com/gin-gonic/gin"

	"github.com/tradepost/marketplace-automation/notification-service/internal/config"
	"github.com/tradepost/marketplace-automation/notification-service/internal/handler"
	"github.com/tradepost/marketplace-automation/notification-service/internal/presence"
	"github.com/tradepost/marketplace-automation/notification-service/internal/profile"
	"github.com/tradepost/marketplace-automation/notification-service/internal/push"
	"github.com/tradepost/marketplace-automation/notification-service/internal/service"
	"github.com/tradepost/marketplace-automation/pkg/database"
	"github.com/tradepost/marketplace-automation/pkg/jwt"
	pkglog "github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/pkg/middleware"
	"github.com/tradepost/marketplace-automation/pkg/response"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "notification-service",
	})
	logger := pkglog.L()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Profile store
	store, closeStore, err := newProfileStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Profile.Driver).Msg("failed to create profile store")
	}
	defer closeStore()
	logger.Info().Str("driver", cfg.Profile.Driver).Msg("profile store ready")

	// 4. Push sender
	sender, err := push.NewFCMSender(ctx, push.FCMConfig{
		ProjectID:       cfg.Push.ProjectID,
		CredentialsFile: cfg.Push.CredentialsFile,
		DryRun:          cfg.Push.DryRun,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create FCM sender")
	}

	// 5. Dispatcher
	dispatcher := service.NewDispatcher(store, presence.NewGate(nil), sender, service.PayloadConfig{
		AndroidChannelID: cfg.Push.AndroidChannelID,
		AndroidPriority:  cfg.Push.AndroidPriority,
		Sound:            cfg.Push.Sound,
		Badge:            cfg.Push.Badge,
	})

	// 6. Auth
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenExpiry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create jwt manager")
	}

	// 7. Setup Gin router + HTTP server
	if !cfg.Server.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.NewHandler(dispatcher, middleware.NewAuthMiddleware(tokens), cfg.Server.Development()).RegisterRoutes(r)
	r.NoRoute(response.NoRoute)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("notification-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 8. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
	}

	logger.Info().Msg("notification-service stopped")
}

// newProfileStore returns the configured store and a func that releases
// its connections.
func newProfileStore(cfg *config.Config) (profile.Store, func(), error) {
	switch cfg.Profile.Driver {
	case "redis":
		store, err := profile.NewRedisStore(profile.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case "database":
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return profile.NewGormStore(db), func() { _ = database.Close(db) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported profile driver: %s", cfg.Profile.Driver)
	}
}
