// Package sweeper deletes records older than a cutoff in bounded batches.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tradepost/marketplace-automation/pkg/log"
	"github.com/tradepost/marketplace-automation/retention-service/internal/domain"
)

// ErrInvalidConfig is returned for a non-positive retention or batch size.
var ErrInvalidConfig = errors.New("invalid sweep config")

// Source enumerates and deletes one kind of record.
type Source interface {
	// Groups returns every group that may hold records older than cutoff.
	// Implementations may pre-filter; the sweeper re-checks each record.
	Groups(ctx context.Context, cutoff time.Time) ([]domain.Group, error)

	// DeleteBatch deletes keys from group as one atomic unit.
	DeleteBatch(ctx context.Context, groupID string, keys []string) error
}

// Config describes one sweep kind.
type Config struct {
	Name      string
	Retention time.Duration
	BatchSize int
}

func (c Config) validate() error {
	if c.Retention <= 0 {
		return fmt.Errorf("%w: retention must be positive", ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	return nil
}

// BatchError records one failed batch.
type BatchError struct {
	GroupID string
	Batch   int // 1-based within the group
	Size    int
	Err     error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("group %s batch %d (%d records): %v", e.GroupID, e.Batch, e.Size, e.Err)
}

func (e BatchError) Unwrap() error {
	return e.Err
}

// Result summarises one run.
type Result struct {
	Name           string
	Cutoff         time.Time
	ScannedGroups  int
	ScannedRecords int
	Expired        int
	Deleted        int
	Batches        int
	Errors         []BatchError
}

// Failed reports whether any batch failed.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// Sweeper runs sweeps against a Source.
type Sweeper struct {
	source Source
	now    func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithClock overrides the wall clock used to compute the cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// New creates a Sweeper over source.
func New(source Source, opts ...Option) *Sweeper {
	s := &Sweeper{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep runs once. The cutoff is fixed at the start of the run. An
// enumeration error aborts the run before anything is deleted; a failed
// batch is recorded and the run moves on to the next batch.
func (s *Sweeper) Sweep(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-cfg.Retention)
	res := &Result{Name: cfg.Name, Cutoff: cutoff}

	l := log.Ctx(ctx)
	l = l.With().Str(log.FieldSweep, cfg.Name).Time("cutoff", cutoff).Logger()
	l.Info().Msg("sweep started")

	groups, err := s.source.Groups(ctx, cutoff)
	if err != nil {
		l.Error().Err(err).Msg("sweep aborted: failed to enumerate records")
		return res, fmt.Errorf("enumerate %s: %w", cfg.Name, err)
	}

	for _, g := range groups {
		res.ScannedGroups++
		res.ScannedRecords += len(g.Records)

		expired := ExpiredKeys(g.Records, cutoff)
		if len(expired) == 0 {
			continue
		}
		res.Expired += len(expired)

		deleted := 0
		for i, batch := range Chunk(expired, cfg.BatchSize) {
			res.Batches++
			if err := s.source.DeleteBatch(ctx, g.ID, batch); err != nil {
				be := BatchError{GroupID: g.ID, Batch: i + 1, Size: len(batch), Err: err}
				res.Errors = append(res.Errors, be)
				l.Error().Err(err).Str("group", g.ID).Int("batch", be.Batch).Int("size", be.Size).Msg("batch delete failed")
				continue
			}
			deleted += len(batch)
		}
		res.Deleted += deleted

		if deleted > 0 {
			l.Info().Str("group", g.ID).Int("deleted", deleted).Msg("deleted expired records")
		}
	}

	l.Info().
		Int("scanned_groups", res.ScannedGroups).
		Int("scanned_records", res.ScannedRecords).
		Int("deleted", res.Deleted).
		Int("batches", res.Batches).
		Int("failed_batches", len(res.Errors)).
		Msg("sweep completed")

	return res, nil
}

// ExpiredKeys returns the keys of records strictly older than cutoff, in
// input order. Records without a timestamp are kept.
func ExpiredKeys(records []domain.Record, cutoff time.Time) []string {
	var keys []string
	for _, r := range records {
		if r.Timestamp.IsZero() {
			continue
		}
		if r.Timestamp.Before(cutoff) {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// Chunk splits keys into consecutive slices of at most size elements.
func Chunk(keys []string, size int) [][]string {
	if size <= 0 || len(keys) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
