// Package scheduler runs the background maintenance jobs of the API.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const sweepTimeout = 30 * time.Second

// Expirer moves coupons past their validity window to EXPIRED.
type Expirer interface {
	ExpireCoupons(ctx context.Context) (int64, error)
}

// Scheduler owns the gocron scheduler running the coupon expiry sweep.
type Scheduler struct {
	cron    gocron.Scheduler
	expirer Expirer
}

// New registers the expiry sweep to run every interval, starting immediately.
// A sweep that is still running when the next one is due is skipped.
func New(expirer Expirer, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("expiry sweep interval must be positive")
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{cron: cron, expirer: expirer}
	_, err = cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			defer cancel()
			_ = s.Sweep(ctx)
		}),
		gocron.WithName("coupon-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = cron.Shutdown()
		return nil, fmt.Errorf("register expiry sweep: %w", err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("scheduler started")
}

// Shutdown stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

// Sweep expires overdue coupons once.
func (s *Scheduler) Sweep(ctx context.Context) error {
	n, err := s.expirer.ExpireCoupons(ctx)
	if err != nil {
		log.Error().Err(err).Msg("coupon expiry sweep failed")
		return err
	}
	if n > 0 {
		log.Info().Int64("expired", n).Msg("coupons expired")
	}
	return nil
}
