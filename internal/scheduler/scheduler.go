// Package scheduler runs periodic warm-up predictions so the model registry
// and the series cache are hot before user traffic arrives.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/guttosm/stockcast/internal/logger"
	"github.com/guttosm/stockcast/internal/service"
)

// Scheduler manages the warm-up cron job.
type Scheduler struct {
	Cron    *cron.Cron
	Service service.PredictionService
	Tickers []string
	Ctx     context.Context // cancelled by Stop
	Timeout time.Duration   // per-ticker bound, zero means none

	cancel     context.CancelFunc
	background sync.WaitGroup
	log        zerolog.Logger
}

// NewScheduler creates a scheduler with second-level cron specs.
//
// Parameters:
//   - ctx (context.Context): parent of every warm-up prediction; Stop cancels a child of it.
//   - svc (service.PredictionService): service whose caches are warmed.
//   - tickers ([]string): tickers predicted on each pass, in order.
//
// Returns:
//   - *Scheduler: not started; call Register and Start.
func NewScheduler(ctx context.Context, svc service.PredictionService, tickers []string) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Service: svc,
		Tickers: tickers,
		Ctx:     ctx,
		Timeout: 30 * time.Second,
		cancel:  cancel,
		log:     logger.With("warmup"),
	}
}

// Register adds the warm-up job under spec (e.g. "0 */15 * * * *").
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.warmup); err != nil {
		return fmt.Errorf("register warm-up task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("tickers", len(s.Tickers)).Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop cancels in-flight predictions, stops the cron scheduler and waits for
// running jobs and RunInBackground passes to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.Cron.Stop().Done()
	s.background.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// RunInBackground starts one warm-up pass on its own goroutine. Stop waits for it.
func (s *Scheduler) RunInBackground() {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.RunNow()
	}()
}

// RunNow executes one warm-up pass synchronously and returns how many
// tickers produced a prediction.
func (s *Scheduler) RunNow() int {
	return s.warmupCount()
}

func (s *Scheduler) warmup() { _ = s.warmupCount() }

func (s *Scheduler) warmupCount() int {
	start := time.Now()
	done := 0
	for _, ticker := range s.Tickers {
		if s.Ctx.Err() != nil {
			break
		}
		if s.predictOne(ticker) {
			done++
		}
	}
	s.log.Info().Int("done", done).Int("total", len(s.Tickers)).Dur("elapsed", time.Since(start)).Msg("warm-up pass finished")
	return done
}

func (s *Scheduler) predictOne(ticker string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("ticker", ticker).Interface("panic", r).Msg("warm-up panic")
			ok = false
		}
	}()

	ctx := s.Ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	p, err := s.Service.Predict(ctx, ticker)
	if err != nil {
		s.log.Error().Str("ticker", ticker).Err(err).Msg("warm-up prediction failed")
		return false
	}
	s.log.Debug().Str("ticker", p.Ticker).Str("source", string(p.Source)).Str("recommendation", string(p.Recommendation)).Msg("warmed")
	return true
}
