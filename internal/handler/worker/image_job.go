package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/queue"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
)

// ImageJobHandler decodes an image-jobs message and runs the image stage.
func ImageJobHandler(svc port.ImageProcessor) queue.Handler {
	return func(ctx context.Context, body []byte) queue.Outcome {
		var msg port.ImageJobMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Errorf(ctx, "❌  Dropping malformed image-jobs message: %v", err)
			return queue.Reject
		}

		err := svc.ProcessImage(ctx, msg)
		outcome := outcomeFor(ctx, err)
		switch {
		case err == nil:
			logger.Infof(ctx, "✅  Image stage done for job #%s", msg.JobID)
		case errors.Is(err, job.ErrJobNotFound):
			logger.Warnf(ctx, "⚠️  Job #%s no longer exists, discarding image-jobs message", msg.JobID)
		case errors.Is(err, job.ErrJobClaimed):
			logger.Infof(ctx, "Job #%s image stage already claimed, discarding duplicate", msg.JobID)
		case errors.Is(err, job.ErrStageUnrecorded):
			logger.Errorf(ctx, "❌  Image stage failure for job #%s not recorded, leaving message for redelivery: %v", msg.JobID, err)
		case outcome == queue.Abandon:
			logger.Warnf(ctx, "🛑  Image stage for job #%s interrupted, leaving message for redelivery", msg.JobID)
		default:
			logger.Errorf(ctx, "❌  Image stage failed for job #%s: %v", msg.JobID, err)
		}
		return outcome
	}
}
