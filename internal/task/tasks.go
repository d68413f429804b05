package task

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeRetentionSweep = "jobs:retention_sweep"

	// RetentionSchedule is the cron spec the worker registers the sweep under.
	RetentionSchedule = "@daily"

	retentionTimeout = 30 * time.Minute
)

// NewRetentionSweepTask creates an Asynq task that runs one retention sweep.
// The sweep is idempotent, so it is never retried and at most one is queued
// per day.
func NewRetentionSweepTask() *asynq.Task {
	return asynq.NewTask(
		TypeRetentionSweep,
		nil,
		asynq.MaxRetry(0),
		asynq.Timeout(retentionTimeout),
		asynq.Unique(24*time.Hour),
	)
}
