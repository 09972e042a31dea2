package workers

import (
	"context"
	"time"

	"github.com/regport/api-go/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StaleValidationSweeper resolves the one gap in the lifecycle: a validator
// that never calls back would leave reports IN_PROGRESS forever. The sweep
// moves anything stuck longer than the timeout to TIMEOUT_ERROR through the
// normal transition path, so history stays complete and concurrent validator
// callbacks lose or win the race cleanly via the optimistic check.
type StaleValidationSweeper struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Interval time.Duration
	Timeout  time.Duration
}

func NewStaleValidationSweeper(db *gorm.DB, logger *logrus.Logger, interval, timeout time.Duration) *StaleValidationSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StaleValidationSweeper{
		DB:       db,
		Logger:   logger,
		Interval: interval,
		Timeout:  timeout,
	}
}

// Start blocks until ctx is cancelled. A Timeout of zero disables the sweep.
func (w *StaleValidationSweeper) Start(ctx context.Context) {
	if w.Timeout <= 0 {
		w.Logger.Info("stale validation sweeper disabled")
		return
	}

	w.Logger.WithFields(logrus.Fields{
		"interval": w.Interval.String(),
		"timeout":  w.Timeout.String(),
	}).Info("stale validation sweeper started")

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("stale validation sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep times out every report that entered IN_PROGRESS before the cutoff.
// Conflicts mean the validator got there first; those are fine.
func (w *StaleValidationSweeper) Sweep() {
	cutoff := time.Now().UTC().Add(-w.Timeout)

	var stale []models.Report
	err := w.DB.
		Where("status = ? AND updated_at < ?", models.StatusInProgress, cutoff).
		Find(&stale).Error
	if err != nil {
		w.Logger.WithError(err).Error("stale validation query failed")
		return
	}

	for i := range stale {
		report := &stale[i]
		note := "validation timed out, no validator response"
		in := models.TransitionInput{
			To:   models.StatusTimeout,
			Note: &note,
		}
		if err := models.TransitionReport(w.DB, report, in); err != nil {
			if models.KindOf(err) == models.KindConflict {
				continue
			}
			w.Logger.WithError(err).WithField("reportId", report.ID).Error("timeout transition failed")
			continue
		}
		w.Logger.WithField("reportId", report.ID).Warn("report validation timed out")
	}
}
