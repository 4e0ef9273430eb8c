package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ResetWorker triggers the monthly reset on a fixed interval for deployments
// without an external scheduler. The admin endpoint remains the primary
// trigger; this worker is optional.
type ResetWorker struct {
	engine   *Engine
	interval time.Duration
	logger   zerolog.Logger
}

func NewResetWorker(engine *Engine, interval time.Duration, logger zerolog.Logger) *ResetWorker {
	return &ResetWorker{
		engine:   engine,
		interval: interval,
		logger:   logger.With().Str("component", "monthly_reset_worker").Logger(),
	}
}

// Run blocks until context cancellation. Unlike snapshot-style workers it
// never fires immediately: the reset pays bonuses, so only the ticker
// cadence may trigger it.
func (w *ResetWorker) Run(ctx context.Context) error {
	if w.engine == nil || w.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			summary, err := w.engine.ResetMonthlyPoints(ctx)
			if err != nil {
				w.logger.Warn().Err(err).Msg("scheduled monthly reset failed")
				continue
			}
			w.logger.Info().Int64("users_reset", summary.UsersReset).Msg("scheduled monthly reset complete")
		}
	}
}
