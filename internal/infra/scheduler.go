package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applogger "EdgeFinder/pkg/logger"
)

// PruneSpec is when idle rate limiter buckets are dropped.
const PruneSpec = "0 */10 * * * *"

// Roller forgets state tied to the previous calendar day.
type Roller interface {
	Rollover(ctx context.Context) error
}

// Pruner drops per-client state idle for longer than the given duration.
type Pruner interface {
	Prune(idle time.Duration) int
}

// Scheduler runs the housekeeping jobs: the daily evaluation rollover and
// rate limiter pruning.
type Scheduler struct {
	cron     *cron.Cron
	roller   Roller
	pruner   Pruner
	idle     time.Duration
	rollSpec string
	logger   *applogger.Logger
	timeout  time.Duration
}

func NewScheduler(roller Roller, pruner Pruner, rolloverSpec string, logger *applogger.Logger) *Scheduler {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		roller:   roller,
		pruner:   pruner,
		idle:     10 * time.Minute,
		rollSpec: rolloverSpec,
		logger:   logger,
		timeout:  10 * time.Second,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.roller != nil {
		if _, err := s.cron.AddFunc(s.rollSpec, s.RunRollover); err != nil {
			return fmt.Errorf("register rollover %q: %w", s.rollSpec, err)
		}
	}
	if s.pruner != nil {
		if _, err := s.cron.AddFunc(PruneSpec, s.RunPrune); err != nil {
			return fmt.Errorf("register prune: %w", err)
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", applogger.String("rollover", s.rollSpec))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunRollover executes the rollover job immediately.
func (s *Scheduler) RunRollover() {
	if s.roller == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.roller.Rollover(ctx); err != nil {
		s.logger.Error("daily rollover failed", applogger.Error(err))
		return
	}
	s.logger.Info("daily rollover done")
}

// RunPrune executes the prune job immediately.
func (s *Scheduler) RunPrune() {
	if s.pruner == nil {
		return
	}
	if n := s.pruner.Prune(s.idle); n > 0 {
		s.logger.Debug("rate limiter pruned", applogger.Int("clients", n))
	}
}
