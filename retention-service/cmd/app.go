package main

import (
	"fmt"

	"github.com/tradepost/marketplace-automation/pkg/database"
	pkglog "github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/retention-service/internal/cassandra"
	"github.com/tradepost/marketplace-automation/retention-service/internal/config"
	"github.com/tradepost/marketplace-automation/retention-service/internal/repository"
	"github.com/tradepost/marketplace-automation/retention-service/internal/scheduler"
	"github.com/tradepost/marketplace-automation/retention-service/internal/sweeper"
)

const (
	sweepMessages = "messages"
	sweepListings = "listings"
)

// app holds the connections opened for the requested sweeps.
type app struct {
	cfg     *config.Config
	jobs    map[string]scheduler.Job
	closers []func()
}

// newApp loads configuration and initialises logging. Connections are
// opened per sweep by addJob.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "retention-service",
	})

	return &app{cfg: cfg, jobs: make(map[string]scheduler.Job)}, nil
}

// enabled returns the sweep kinds switched on in configuration.
func (a *app) enabled() []string {
	var kinds []string
	if a.cfg.Sweeps.Messages.Enabled {
		kinds = append(kinds, sweepMessages)
	}
	if a.cfg.Sweeps.Listings.Enabled {
		kinds = append(kinds, sweepListings)
	}
	return kinds
}

func (a *app) addJob(kind string) error {
	logger := pkglog.L()

	switch kind {
	case sweepMessages:
		client, err := cassandra.NewClient(a.cfg.Cassandra)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		logger.Info().Strs("hosts", a.cfg.Cassandra.Hosts).Str("keyspace", a.cfg.Cassandra.Keyspace).Msg("cassandra connected")

		sc := a.cfg.Sweeps.Messages
		a.jobs[kind] = scheduler.Job{
			Schedule: sc.Schedule,
			Config:   sweeper.Config{Name: kind, Retention: sc.Retention, BatchSize: sc.BatchSize},
			Sweeper:  sweeper.New(cassandra.NewMessageSource(client)),
		}

	case sweepListings:
		db, err := database.New(&a.cfg.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = database.Close(db) })
		logger.Info().Str("driver", a.cfg.Database.Driver).Msg("database connected")

		sc := a.cfg.Sweeps.Listings
		a.jobs[kind] = scheduler.Job{
			Schedule: sc.Schedule,
			Config:   sweeper.Config{Name: kind, Retention: sc.Retention, BatchSize: sc.BatchSize},
			Sweeper:  sweeper.New(repository.NewGormListingRepository(db)),
		}

	default:
		return fmt.Errorf("unknown sweep %q (want %s or %s)", kind, sweepMessages, sweepListings)
	}
	return nil
}

// locker returns the Redis run lock, or nil when no address is configured.
func (a *app) locker() (scheduler.Locker, error) {
	if a.cfg.Redis.Address == "" {
		return nil, nil
	}
	l, err := scheduler.NewRedisLocker(a.cfg.Redis.Address, a.cfg.Redis.Password, a.cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = l.Close() })
	return l, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
