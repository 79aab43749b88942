// Package sweeper runs the background reconciliation task: counters are
// zeroed on a long interval and expired bans are deactivated on a short
// one. One lifecycle covers both schedules.
package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"aegis/internal/abuse/config"
	"aegis/internal/abuse/metrics"
)

// Service is the slice of the abuse service the sweeper drives.
type Service interface {
	ResetAllStats(ctx context.Context) (int, error)
	SweepExpiredBans(ctx context.Context) (int, error)
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

type Sweeper struct {
	service       Service
	logger        *slog.Logger
	metrics       *metrics.Metrics
	resetInterval time.Duration
	unbanInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(service Service, cfg config.SweeperConfig, opts ...Option) *Sweeper {
	sw := &Sweeper{
		service:       service,
		logger:        slog.Default(),
		resetInterval: cfg.StatsResetInterval,
		unbanInterval: cfg.UnbanInterval,
	}
	if sw.resetInterval <= 0 {
		sw.resetInterval = config.DefaultConfig().Sweeper.StatsResetInterval
	}
	if sw.unbanInterval <= 0 {
		sw.unbanInterval = config.DefaultConfig().Sweeper.UnbanInterval
	}
	for _, opt := range opts {
		opt(sw)
	}
	return sw
}

// Start launches the sweep loop. Calling Start while already running is a
// no-op, so re-entrant invocation cannot duplicate work.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("abuse sweeper started",
		"stats_reset_interval", s.resetInterval.String(),
		"unban_interval", s.unbanInterval.String(),
	)
	go s.run(runCtx)
}

// Stop signals the loop and waits for any in-flight sweep iteration to
// finish before returning. Stopping a stopped sweeper is a no-op.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.logger.Info("abuse sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	resetTicker := time.NewTicker(s.resetInterval)
	defer resetTicker.Stop()
	unbanTicker := time.NewTicker(s.unbanInterval)
	defer unbanTicker.Stop()

	// Ticks run to completion; stores get a context that survives Stop so
	// a sweep batch is never cancelled midway.
	tickCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-resetTicker.C:
			s.RunStatsReset(tickCtx)
		case <-unbanTicker.C:
			s.RunExpirySweep(tickCtx)
		case <-ctx.Done():
			return
		}
	}
}

// RunStatsReset executes one counter-reset pass.
func (s *Sweeper) RunStatsReset(ctx context.Context) {
	start := time.Now()
	touched, err := s.service.ResetAllStats(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("abuse_stats_reset_failed",
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		if s.metrics != nil {
			s.metrics.IncrementSweepRuns("stats_reset", "error")
		}
		return
	}

	s.logger.Info("abuse_stats_reset_completed",
		"rows_reset", touched,
		"duration_ms", duration.Milliseconds(),
	)
	if s.metrics != nil {
		s.metrics.IncrementSweepRuns("stats_reset", "success")
		s.metrics.ObserveSweepDuration(duration.Seconds())
	}
}

// RunExpirySweep executes one expired-ban reconciliation pass.
func (s *Sweeper) RunExpirySweep(ctx context.Context) {
	start := time.Now()
	lifted, err := s.service.SweepExpiredBans(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("abuse_expiry_sweep_failed",
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		if s.metrics != nil {
			s.metrics.IncrementSweepRuns("expiry", "error")
		}
		return
	}

	s.logger.Info("abuse_expiry_sweep_completed",
		"bans_lifted", lifted,
		"duration_ms", duration.Milliseconds(),
	)
	if s.metrics != nil {
		s.metrics.IncrementSweepRuns("expiry", "success")
		s.metrics.IncrementSweepUnbans(lifted)
		s.metrics.ObserveSweepDuration(duration.Seconds())
	}
}
