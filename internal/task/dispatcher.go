package task

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

type Dispatcher struct {
	client *asynq.Client
}

func NewDispatcher(addr, password string) *Dispatcher {
	c := asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password})
	return &Dispatcher{client: c}
}

// EnqueueRetentionSweep hands a sweep to whichever worker picks it up first.
func (d *Dispatcher) EnqueueRetentionSweep(ctx context.Context) (string, error) {
	info, err := d.client.EnqueueContext(ctx, NewRetentionSweepTask())
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeRetentionSweep, err)
	}
	return info.ID, nil
}

func (d *Dispatcher) Close() error {
	return d.client.Close()
}
