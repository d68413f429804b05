package task

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

func TestNewRetentionSweepTask(t *testing.T) {
	tk := NewRetentionSweepTask()
	if tk.Type() != TypeRetentionSweep {
		t.Errorf("Type = %q; want %q", tk.Type(), TypeRetentionSweep)
	}
	if len(tk.Payload()) != 0 {
		t.Errorf("Payload = %q; want empty", tk.Payload())
	}
}

func TestDispatcher_EnqueueRetentionSweep(t *testing.T) {
	mr := miniredis.RunT(t)
	d := NewDispatcher(mr.Addr(), "")
	t.Cleanup(func() { _ = d.Close() })

	id, err := d.EnqueueRetentionSweep(context.Background())
	if err != nil {
		t.Fatalf("EnqueueRetentionSweep: %v", err)
	}
	if id == "" {
		t.Fatal("expected a task id")
	}

	// uniqueness window: a second sweep the same day is refused
	if _, err := d.EnqueueRetentionSweep(context.Background()); !errors.Is(err, asynq.ErrDuplicateTask) {
		t.Fatalf("second enqueue err = %v; want %v", err, asynq.ErrDuplicateTask)
	}
}

func TestNewScheduler(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewScheduler(asynq.RedisClientOpt{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if s == nil {
		t.Fatal("expected a scheduler")
	}
}
