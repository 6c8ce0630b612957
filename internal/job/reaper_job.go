package job

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reaper deletes presence records that stopped heartbeating
type Reaper interface {
	ReapAll(ctx context.Context) (int64, error)
}

// ReaperJob sweeps stale presence rows across every workspace, so
// workspaces with no live tab left still get cleaned up.
type ReaperJob struct {
	reaper  Reaper
	timeout time.Duration
	logger  *zap.Logger
}

// NewReaperJob creates a new ReaperJob instance
func NewReaperJob(reaper Reaper, timeout time.Duration, logger *zap.Logger) *ReaperJob {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReaperJob{
		reaper:  reaper,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes one sweep
func (j *ReaperJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	deleted, err := j.reaper.ReapAll(ctx)
	if err != nil {
		j.logger.Error("Presence reaper job failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	if deleted == 0 {
		j.logger.Debug("No stale presence records found")
		return
	}

	j.logger.Info("Presence reaper job completed",
		zap.Int64("deleted", deleted),
		zap.Duration("duration", time.Since(start)),
	)
}
