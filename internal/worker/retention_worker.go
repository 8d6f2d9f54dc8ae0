package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/opsdesk/ticketstore/internal/config"
	"github.com/opsdesk/ticketstore/internal/repository"
)

// RetentionWorker periodically purges tickets older than the retention window.
type RetentionWorker struct {
	cron *cron.Cron
}

// StartRetentionWorker schedules the sweep. Returns nil when retention is
// disabled; Stop on a nil worker is a no-op.
func StartRetentionWorker(cfg config.RetentionConfig, repo repository.TicketRepository, logger *zap.Logger) (*RetentionWorker, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	c := cron.New()
	maxAge := cfg.MaxAge()
	_, err := c.AddFunc(cfg.Schedule, func() {
		cutoff := time.Now().Add(-maxAge)
		removed, err := repo.DeleteOlderThan(context.Background(), cutoff)
		if err != nil {
			logger.Error("retention sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			logger.Info("retention sweep",
				zap.Int("removed", removed),
				zap.Time("cutoff", cutoff),
			)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("retention worker started",
		zap.String("schedule", cfg.Schedule),
		zap.Duration("max_age", maxAge),
	)
	return &RetentionWorker{cron: c}, nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *RetentionWorker) Stop() {
	if w == nil {
		return
	}
	ctx := w.cron.Stop()
	<-ctx.Done()
}
