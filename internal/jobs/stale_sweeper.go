package jobs

import (
	"context"
	"time"

	"evalgrid/pkg/logger"
	"evalgrid/pkg/store/mysql"
)

// StaleSweeperJob fails RUNNING subtasks whose executor never reported back.
// The timeout-shaped error message makes the failure analyzer treat them as
// transient, so a retry pass picks them up automatically.
type StaleSweeperJob struct {
	subtasks *mysql.SubtaskRepository
	timeout  time.Duration
	interval time.Duration
}

// NewStaleSweeperJob creates the stale subtask sweeper
func NewStaleSweeperJob(subtasks *mysql.SubtaskRepository, timeout, interval time.Duration) *StaleSweeperJob {
	return &StaleSweeperJob{
		subtasks: subtasks,
		timeout:  timeout,
		interval: interval,
	}
}

func (j *StaleSweeperJob) Name() string { return "stale-sweeper" }

func (j *StaleSweeperJob) Interval() time.Duration { return j.interval }

func (j *StaleSweeperJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.timeout)
	ids, err := j.subtasks.MarkStaleRunningFailed(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		logger.WarnCtx(ctx, "swept %d stale running subtasks (started before %s): %v",
			len(ids), cutoff.Format(time.RFC3339), ids)
	}
	return nil
}
