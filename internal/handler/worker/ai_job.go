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

// AIJobHandler decodes an ai-jobs message and runs the enrichment stage.
func AIJobHandler(svc port.ImageAnalyser) queue.Handler {
	return func(ctx context.Context, body []byte) queue.Outcome {
		var msg port.AIJobMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Errorf(ctx, "❌  Dropping malformed ai-jobs message: %v", err)
			return queue.Reject
		}

		err := svc.AnalyseImage(ctx, msg)
		outcome := outcomeFor(ctx, err)
		switch {
		case err == nil:
			logger.Infof(ctx, "✅  AI stage done for job #%s", msg.JobID)
		case errors.Is(err, job.ErrJobNotFound):
			logger.Warnf(ctx, "⚠️  Job #%s no longer exists, discarding ai-jobs message", msg.JobID)
		case errors.Is(err, job.ErrJobClaimed):
			logger.Infof(ctx, "Job #%s AI stage already claimed, discarding duplicate", msg.JobID)
		case errors.Is(err, job.ErrStageUnrecorded):
			logger.Errorf(ctx, "❌  AI stage failure for job #%s not recorded, leaving message for redelivery: %v", msg.JobID, err)
		case outcome == queue.Abandon:
			logger.Warnf(ctx, "🛑  AI stage for job #%s interrupted, leaving message for redelivery", msg.JobID)
		default:
			logger.Errorf(ctx, "❌  AI stage failed for job #%s: %v", msg.JobID, err)
		}
		return outcome
	}
}
