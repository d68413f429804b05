package worker

import (
	"context"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

// RetentionSweepHandler runs one sweep for a scheduled retention task.
func RetentionSweepHandler(ctx context.Context, svc port.RetentionSweeper) error {
	report, err := svc.Sweep(ctx)
	if err != nil {
		logger.Errorf(ctx, "❌  Retention sweep failed: %v", err)
		return err
	}

	logger.Infof(ctx, "✅  Retention sweep cleaned %d of %d expired jobs", report.Cleaned, report.Found)
	return nil
}
