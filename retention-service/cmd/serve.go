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
	"github.com/spf13/cobra"

	pkglog "github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/pkg/response"
	"github.com/tradepost/marketplace-automation/retention-service/internal/scheduler"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sweep scheduler and health endpoint",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	logger := pkglog.L()

	kinds := a.enabled()
	if len(kinds) == 0 {
		return errors.New("no sweeps enabled")
	}
	for _, kind := range kinds {
		if err := a.addJob(kind); err != nil {
			return err
		}
	}

	locker, err := a.locker()
	if err != nil {
		return err
	}
	if locker == nil {
		logger.Warn().Msg("REDIS_ADDRESS not configured; sweeps are not locked across replicas")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, locker, a.cfg.Redis.LockTTL)
	for _, kind := range kinds {
		job := a.jobs[kind]
		if err := sched.Add(job); err != nil {
			return err
		}
		logger.Info().
			Str(pkglog.FieldSweep, kind).
			Str("schedule", job.Schedule).
			Dur("retention", job.Config.Retention).
			Int("batch_size", job.Config.BatchSize).
			Msg("sweep scheduled")
	}
	sched.Start()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sweeps": kinds})
	})
	r.NoRoute(response.NoRoute)

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg("retention-service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		// 1. stop scheduling; in-flight sweeps see a cancelled context
		sched.Stop()
		cancel()
		<-sched.Done()

		// 2. drain HTTP
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("retention-service stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
	return nil
}
