package task

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// NewScheduler returns an asynq scheduler with the daily retention sweep
// registered. The caller runs and shuts it down.
func NewScheduler(opt asynq.RedisClientOpt) (*asynq.Scheduler, error) {
	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := s.Register(RetentionSchedule, NewRetentionSweepTask()); err != nil {
		return nil, fmt.Errorf("register %s: %w", TypeRetentionSweep, err)
	}
	return s, nil
}
