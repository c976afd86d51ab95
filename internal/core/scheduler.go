package core

// scheduler.go runs ingestion in the background while the server is up.
// A failed or rejected run is logged; the scheduler keeps ticking.

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// StartScheduler runs ingestion every interval until ctx is cancelled.
// When runNow is true it also runs once immediately. It blocks, so callers
// start it in a goroutine. A non-positive interval with runNow false returns
// at once.
func (e *Engine) StartScheduler(ctx context.Context, interval time.Duration, runNow bool) {
	if runNow {
		e.runScheduled(ctx)
	}
	if interval <= 0 {
		return
	}

	slog.Info("ingestion scheduler started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ingestion scheduler stopped")
			return
		case <-ticker.C:
			e.runScheduled(ctx)
		}
	}
}

func (e *Engine) runScheduled(ctx context.Context) {
	report, err := e.Run(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		slog.Info("scheduled ingestion skipped", "reason", err)
	case err != nil:
		slog.Warn("scheduled ingestion interrupted", "run_id", report.RunID, "error", err)
	case len(report.Failed()) > 0:
		slog.Warn("scheduled ingestion finished with failures",
			"run_id", report.RunID,
			"failed_tables", len(report.Failed()),
		)
	}
}
