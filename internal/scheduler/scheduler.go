// Package scheduler wires up the cron job that periodically closes open
// positions whose application deadline has passed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper closes expired positions and reports how many changed.
type Sweeper interface {
	CloseExpiredPositions(ctx context.Context, now time.Time) (int64, error)
}

// Recorder is told how many positions each sweep closed.
type Recorder interface {
	PositionsClosed(n int64)
}

// Scheduler wraps robfig/cron and manages the sweep loop.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	recorder Recorder
	spec     string // cron spec, e.g. "@every 1h"
	now      func() time.Time
	log      *slog.Logger
	initial  sync.WaitGroup // startup sweep
}

// New creates a Scheduler that sweeps on spec. recorder may be nil.
func New(sweeper Sweeper, recorder Recorder, spec string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper:  sweeper,
		recorder: recorder,
		spec:     spec,
		now:      time.Now,
		log:      slog.Default().With("component", "scheduler"),
	}
}

// Start registers the job and starts the scheduler. One sweep also runs
// immediately so positions that expired while the service was down close
// without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("cron started", "spec", s.spec)

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		_, _ = s.RunOnce(ctx)
	}()
	return nil
}

// Stop shuts the scheduler down and waits for running sweeps to finish,
// including the one started by Start.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.log.Info("cron stopped")
}

// RunOnce performs a single sweep.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.sweeper.CloseExpiredPositions(ctx, s.now())
	if err != nil {
		s.log.Error("sweep failed", "err", err)
		return 0, err
	}
	if s.recorder != nil {
		s.recorder.PositionsClosed(n)
	}
	if n > 0 {
		s.log.Info("closed expired positions", "count", n)
	}
	return n, nil
}
