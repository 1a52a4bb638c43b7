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

	"github.com/tradepost/marketplace-automation/payment-service/internal/config"
	"github.com/tradepost/marketplace-automation/payment-service/internal/domain"
	"github.com/tradepost/marketplace-automation/payment-service/internal/gateway"
	"github.com/tradepost/marketplace-automation/payment-service/internal/handler"
	"github.com/tradepost/marketplace-automation/payment-service/internal/repository"
	"github.com/tradepost/marketplace-automation/payment-service/internal/service"
	"github.com/tradepost/marketplace-automation/pkg/database"
	pkglog "github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/pkg/pubsub"
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
		ServiceName: "payment-service",
	})
	logger := pkglog.L()

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" {
		logger.Fatal().Msg("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}
	if cfg.Razorpay.WebhookSecret == "" {
		logger.Warn().Msg("RAZORPAY_WEBHOOK_SECRET not set; webhook signatures will not be verified")
	}

	unit, err := service.ParseAmountUnit(cfg.Payment.AmountUnit)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid payment.amount_unit")
	}

	// 3. Webhook event log
	var events repository.EventLog
	if cfg.Events.Dedupe {
		db, err := database.New(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close(db)

		if err := database.AutoMigrate(db, &domain.WebhookEventModel{}); err != nil {
			logger.Fatal().Err(err).Msg("failed to auto-migrate")
		}
		events = repository.NewGormEventLog(db)
		logger.Info().Str("driver", cfg.Database.Driver).Msg("webhook event log ready")
	}

	// 4. Event publisher
	publisher, err := pubsub.NewPublisher(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create event publisher")
	}
	if publisher != nil {
		defer publisher.Close()
		logger.Info().Str("driver", cfg.PubSub.Driver).Msg("payment events will be published")
	}

	// 5. Gateway + service
	gw := gateway.NewRazorpayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	svc := service.NewPaymentService(gw, cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret, events, publisher, service.Config{
		AmountUnit:      unit,
		DefaultCurrency: cfg.Payment.DefaultCurrency,
		CallbackURL:     cfg.Payment.CallbackURL,
	})

	// 6. Setup Gin router + HTTP server
	development := cfg.Server.Environment == "development"
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(response.Recovery(development))
	r.Use(pkglog.GinMiddleware(logger))
	handler.NewHandler(svc, cfg.Server.Environment).RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("environment", cfg.Server.Environment).Str("amount_unit", string(unit)).Msg("payment-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 7. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
	}

	logger.Info().Msg("payment-service stopped")
}
