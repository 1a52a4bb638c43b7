// Package scheduler runs retention sweeps on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	pkglog "github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/retention-service/internal/sweeper"
)

// ErrLocked is returned by RunOnce when another replica holds the lock.
var ErrLocked = errors.New("sweep already running elsewhere")

// Job is one scheduled sweep.
type Job struct {
	Schedule string
	Config   sweeper.Config
	Sweeper  *sweeper.Sweeper
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	lockTTL time.Duration
	ctx     context.Context
	doneCh  chan struct{}
}

// New creates a Scheduler. locker may be nil to run without a cross-replica
// lock; overlapping runs within this process are always skipped.
func New(ctx context.Context, locker Locker, lockTTL time.Duration) *Scheduler {
	logger := cronLogger{l: pkglog.L()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		locker:  locker,
		lockTTL: lockTTL,
		ctx:     ctx,
		doneCh:  make(chan struct{}),
	}
}

// Add registers job under its schedule.
func (s *Scheduler) Add(job Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() {
		l := pkglog.L()
		if _, err := s.RunOnce(s.ctx, job); err != nil {
			if errors.Is(err, ErrLocked) {
				l.Info().Str(pkglog.FieldSweep, job.Config.Name).Msg("sweep skipped: lock held by another replica")
				return
			}
			l.Error().Err(err).Str(pkglog.FieldSweep, job.Config.Name).Msg("scheduled sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", job.Schedule, job.Config.Name, err)
	}
	return nil
}

// RunOnce runs job immediately, holding the run lock when one is configured.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) (*sweeper.Result, error) {
	ctx = pkglog.WithStr(ctx, pkglog.FieldSweep, job.Config.Name)

	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, job.Config.Name, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrLocked
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				l := pkglog.Ctx(ctx)
				l.Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}

	return job.Sweeper.Sweep(ctx, job.Config)
}

// Start starts the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and returns immediately.
// Call Done() to wait for in-flight runs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	go func() {
		<-stopCtx.Done()
		close(s.doneCh)
	}()
}

// Done returns a channel that is closed when all runs have finished.
func (s *Scheduler) Done() <-chan struct{} {
	return s.doneCh
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
