package job

import (
	"context"
	"fmt"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/metrics"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

type retentionSweeperSrv struct {
	repo  port.JobRepository
	strg  port.Storage
	cache port.Cache
	now   func() time.Time
}

func NewRetentionSweeper(repo port.JobRepository, strg port.Storage, cache port.Cache) port.RetentionSweeper {
	return &retentionSweeperSrv{repo: repo, strg: strg, cache: cache, now: time.Now}
}

// Sweep deletes every job older than RetentionAge. A job's row is only
// removed once both of its blob prefixes are gone.
func (s *retentionSweeperSrv) Sweep(ctx context.Context) (port.SweepReport, error) {
	cutoff := s.now().UTC().Add(-RetentionAge)
	jobs, err := s.repo.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return port.SweepReport{}, fmt.Errorf("list expired jobs: %w", err)
	}

	report := port.SweepReport{Found: len(jobs)}
	if len(jobs) == 0 {
		logger.Info(ctx, "no expired jobs found")
		return report, nil
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.clean(ctx, job); err != nil {
			metrics.RetentionJobs.WithLabelValues("failed").Inc()
			logger.Warnf(ctx, "failed to clean expired job #%s: %v", job.ID, err)
			continue
		}
		metrics.RetentionJobs.WithLabelValues("cleaned").Inc()
		report.Cleaned++
	}

	logger.Info(ctx, "retention sweep finished", "found", report.Found, "cleaned", report.Cleaned)
	return report, nil
}

func (s *retentionSweeperSrv) clean(ctx context.Context, job *model.Job) error {
	u, j := job.UserID.String(), job.ID.String()
	for _, prefix := range []string{OriginalPrefix(u, j), ProcessedPrefix(u, j)} {
		if err := s.strg.RemovePrefix(ctx, prefix); err != nil {
			return fmt.Errorf("remove %q: %w", prefix, err)
		}
	}
	if err := s.repo.Delete(ctx, job.ID); err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	invalidate(ctx, s.cache, job)
	return nil
}
