package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Retention periodically deletes chat turn audit records older than MaxAge.
type Retention struct {
	store  TurnStore
	maxAge time.Duration
	logger zerolog.Logger
	now    func() time.Time

	scheduler *cron.Cron
}

// NewRetention creates a retention job. It does nothing until Start is called.
func NewRetention(store TurnStore, maxAge time.Duration, logger zerolog.Logger) *Retention {
	return &Retention{
		store:  store,
		maxAge: maxAge,
		logger: logger.With().Str("component", "retention").Logger(),
		now:    time.Now,
	}
}

// Start schedules the purge using a standard five field cron spec or a
// descriptor such as "@hourly".
func (r *Retention) Start(spec string) error {
	r.scheduler = cron.New()
	_, err := r.scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error().Err(err).Msg("retention run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", spec, err)
	}
	r.scheduler.Start()
	r.logger.Info().Str("schedule", spec).Dur("max_age", r.maxAge).Msg("retention scheduled")
	return nil
}

// RunOnce deletes records created before now - MaxAge.
func (r *Retention) RunOnce(ctx context.Context) (int64, error) {
	cutoff := r.now().Add(-r.maxAge)
	n, err := r.store.PurgeTurnsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("purged chat turns")
	}
	return n, nil
}

// Stop halts scheduling and waits for a running purge to finish.
func (r *Retention) Stop() {
	if r.scheduler == nil {
		return
	}
	<-r.scheduler.Stop().Done()
}
