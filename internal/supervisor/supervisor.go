// Package supervisor drives the periodic maintenance passes: lobby sweeps and
// match ticks. Failures of the supervised work are the services' problem; the
// supervisor only keeps the cadence.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/duelhub/duelhub/internal/services/lobby"
	"github.com/duelhub/duelhub/internal/services/match"
)

// Config holds the supervision intervals
type Config struct {
	LobbySweepInterval time.Duration
	MatchTickInterval  time.Duration
}

// DefaultConfig returns the default supervision cadence
func DefaultConfig() Config {
	return Config{
		LobbySweepInterval: 10 * time.Second,
		MatchTickInterval:  15 * time.Second,
	}
}

// Supervisor owns the background scheduler
type Supervisor struct {
	cfg       Config
	queue     *lobby.Queue
	engine    *match.Engine
	logger    *slog.Logger
	scheduler gocron.Scheduler
}

// New creates a supervisor over the given queue and engine
func New(cfg Config, queue *lobby.Queue, engine *match.Engine, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		cfg:    cfg,
		queue:  queue,
		engine: engine,
		logger: logger,
	}
}

// Start begins the periodic passes. The passed context is used for the
// supervised work on each firing.
func (s *Supervisor) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(s.cfg.LobbySweepInterval),
		gocron.NewTask(func() {
			s.queue.Sweep(ctx)
		}),
	); err != nil {
		return fmt.Errorf("schedule lobby sweep: %w", err)
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(s.cfg.MatchTickInterval),
		gocron.NewTask(func() {
			s.engine.TickAll(ctx)
		}),
	); err != nil {
		return fmt.Errorf("schedule match tick: %w", err)
	}

	scheduler.Start()
	s.scheduler = scheduler

	s.logger.Info("supervisor started",
		slog.Duration("lobby_sweep_interval", s.cfg.LobbySweepInterval),
		slog.Duration("match_tick_interval", s.cfg.MatchTickInterval),
	)
	return nil
}

// Stop shuts the scheduler down, waiting for in-flight passes
func (s *Supervisor) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	s.logger.Info("supervisor stopped")
	return nil
}
