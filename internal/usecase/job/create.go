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

type jobCreatorSrv struct {
	repo  port.JobRepository
	cache port.Cache
	pub   port.JobPublisher
	now   func() time.Time
}

func NewJobCreator(repo port.JobRepository, cache port.Cache, pub port.JobPublisher) port.JobCreator {
	return &jobCreatorSrv{repo: repo, cache: cache, pub: pub, now: time.Now}
}

func (s *jobCreatorSrv) CreateJob(ctx context.Context, in port.CreateJobInput) (*port.JobView, error) {
	job := &model.Job{
		ID:               in.JobID,
		UserID:           in.UserID,
		OriginalURL:      in.OriginalURL,
		OriginalFilename: in.OriginalFilename,
		FileSize:         in.FileSize,
		MimeType:         in.MimeType,
		// DATETIME(6) keeps microseconds only
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		Status:    model.JobStatusPending,
		AIStatus:  model.AIStatusPending,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job #%s: %w", job.ID, err)
	}
	metrics.JobsCreated.Inc()
	logger.Info(ctx, "job created", "jobId", job.ID.String(), "userId", job.UserID.String())

	if err := s.cache.InvalidateJobLists(ctx, job.UserID); err != nil {
		logger.Warnf(ctx, "failed to invalidate cached job lists for user #%s: %v", job.UserID, err)
	}

	msg := port.ImageJobMessage{
		JobID:            job.ID.String(),
		UserID:           job.UserID.String(),
		OriginalURL:      job.OriginalURL,
		OriginalFilename: job.OriginalFilename,
		MimeType:         job.MimeType,
	}
	if err := s.pub.PublishImageJob(ctx, msg); err != nil {
		// the row stays Pending with nothing in flight; recovery is an operator replay
		metrics.PublishFailures.WithLabelValues(metrics.QueueImageJobs).Inc()
		logger.Error(ctx, "publish failure post-commit",
			"jobId", msg.JobID, "userId", msg.UserID, "queue", metrics.QueueImageJobs, "error", err)
	}

	view := ToView(job)
	return &view, nil
}
