package verification

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drives the registry's periodic expiry sweep on a fixed interval.
// Sweep logic lives on the registry and is independent of this scheduling;
// the sweeper only owns the ticker.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper for the given registry.
func NewSweeper(registry *Registry, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		registry: registry,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps the registry every interval until the context is canceled.
// It never returns an error: the sweep has no failure mode, and anomalies
// are only logged.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("verification sweeper started",
		slog.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("verification sweeper stopped")
			return
		case <-ticker.C:
			before := s.registry.Len()
			s.registry.Sweep()
			if evicted := before - s.registry.Len(); evicted > 0 {
				s.logger.Debug("verification tokens expired",
					slog.Int("evicted", evicted),
				)
			}
		}
	}
}
