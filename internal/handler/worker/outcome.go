package worker

import (
	"context"
	"errors"

	"github.com/HlaKarki/ImageProcessor/internal/queue"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
)

// outcomeFor maps a stage result to how its delivery is settled.
func outcomeFor(ctx context.Context, err error) queue.Outcome {
	switch {
	case err == nil:
		return queue.Ack
	case errors.Is(err, job.ErrJobNotFound), errors.Is(err, job.ErrJobClaimed):
		return queue.Ack
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		// leave it unacked so the broker hands it to the next consumer
		return queue.Abandon
	case errors.Is(err, job.ErrStageUnrecorded):
		// the job still reads as in flight; a later delivery retakes the claim
		return queue.Abandon
	default:
		return queue.Reject
	}
}
