package job

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/metrics"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

// webFormat keys the optimized output handed to the enrichment stage.
const webFormat = "webp"

type imageProcessorSrv struct {
	repo        port.JobRepository
	strg        port.Storage
	cache       port.Cache
	pub         port.JobPublisher
	transformer port.ImageTransformer
	now         func() time.Time
}

func NewImageProcessor(
	repo port.JobRepository,
	strg port.Storage,
	cache port.Cache,
	pub port.JobPublisher,
	transformer port.ImageTransformer,
) port.ImageProcessor {
	return &imageProcessorSrv{repo: repo, strg: strg, cache: cache, pub: pub, transformer: transformer, now: time.Now}
}

// ProcessImage runs the image stage of the job named by msg.
//
// It returns nil on success, ErrJobNotFound or ErrJobClaimed when the message
// has nothing left to do, the context error when interrupted, and an error
// wrapping ErrStageFailed once the failure has been recorded on the job, or
// ErrStageUnrecorded when it could not be.
func (s *imageProcessorSrv) ProcessImage(ctx context.Context, msg port.ImageJobMessage) error {
	id, err := parseJobID(msg.JobID)
	if err != nil {
		return err
	}

	job, err := loadJob(ctx, s.repo, id)
	if err != nil {
		return err
	}

	started := s.now().UTC()
	claimed, err := s.repo.ClaimImageProcessing(ctx, id, started, started.Add(-ClaimStaleAfter))
	if err != nil {
		return fmt.Errorf("claim job #%s: %w", id, err)
	}
	if !claimed {
		logger.Info(ctx, "image stage already claimed or finished", "jobId", msg.JobID, "status", string(job.Status))
		return ErrJobClaimed
	}
	job.Status = model.JobStatusProcessing
	job.StartedAt = &started
	invalidate(ctx, s.cache, job)
	logger.Info(ctx, "image stage started", "jobId", msg.JobID, "userId", job.UserID.String())

	res, err := s.run(ctx, job)
	if err == nil {
		err = s.repo.UpdateImageStage(ctx, id, *res)
		if err != nil {
			err = fmt.Errorf("persist image results: %w", err)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			release(ctx, job, s.repo.ReleaseImageClaim)
			logger.Warn(ctx, "image stage interrupted, leaving message for redelivery", "jobId", msg.JobID)
			return ctx.Err()
		}
		return s.fail(ctx, job, started, err)
	}

	metrics.ObserveStage(metrics.StageImage, metrics.OutcomeCompleted, started)
	invalidate(ctx, s.cache, job)
	logger.Info(ctx, "image stage completed", "jobId", msg.JobID, "userId", job.UserID.String(),
		"thumbnails", len(res.Thumbnails), "durationMs", time.Since(started).Milliseconds())

	s.enqueueAnalysis(ctx, job, res)
	return nil
}

func (s *imageProcessorSrv) run(ctx context.Context, job *model.Job) (*model.ImageStageResult, error) {
	data, err := download(ctx, s.strg, job.OriginalURL)
	if err != nil {
		return nil, err
	}

	out, err := s.transformer.Transform(data, job.FileSize)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	thumbnails := make(model.AssetURLs, len(out.Thumbnails))
	for _, asset := range out.Thumbnails {
		url, err := s.upload(ctx, job, asset)
		if err != nil {
			return nil, err
		}
		thumbnails[asset.Name] = url
	}

	formats := make([]string, 0, len(out.Optimized))
	for f := range out.Optimized {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	optimized := make(model.AssetURLs, len(formats))
	for _, f := range formats {
		url, err := s.upload(ctx, job, out.Optimized[f])
		if err != nil {
			return nil, err
		}
		optimized[f] = url
	}

	completedAt := s.now().UTC()
	metadata := out.Metadata
	return &model.ImageStageResult{
		Status:      model.JobStatusCompleted,
		CompletedAt: &completedAt,
		RetryCount:  job.RetryCount,
		Thumbnails:  thumbnails,
		Optimized:   optimized,
		Metadata:    &metadata,
		AIStatus:    model.AIStatusPending,
	}, nil
}

func (s *imageProcessorSrv) upload(ctx context.Context, job *model.Job, asset port.EncodedAsset) (string, error) {
	key := ProcessedKey(job.UserID.String(), job.ID.String(), asset.Name, asset.Ext)
	opts := map[string]string{"Content-Type": asset.ContentType}
	if err := s.strg.SaveFile(ctx, key, bytes.NewReader(asset.Data), int64(len(asset.Data)), opts); err != nil {
		return "", fmt.Errorf("upload %s: %w", asset.Name, err)
	}
	return s.strg.PublicURL(key), nil
}

// fail records cause on the job and forces the enrichment stage to Skipped.
func (s *imageProcessorSrv) fail(ctx context.Context, job *model.Job, started time.Time, cause error) error {
	res := model.ImageStageResult{
		Status:         model.JobStatusError,
		CompletedAt:    job.CompletedAt,
		ErrorMessage:   strPtr(cause.Error()),
		RetryCount:     job.RetryCount + 1,
		Thumbnails:     job.Thumbnails,
		Optimized:      job.Optimized,
		Metadata:       job.Metadata,
		AIStatus:       model.AIStatusSkipped,
		AIErrorMessage: strPtr(model.AISkippedMessage),
	}
	if err := s.repo.UpdateImageStage(ctx, job.ID, res); err != nil {
		logger.Error(ctx, "failed to record image stage failure", "jobId", job.ID.String(), "error", err, "cause", cause)
		release(ctx, job, s.repo.ReleaseImageClaim)
		invalidate(ctx, s.cache, job)
		return fmt.Errorf("%w: job #%s: %v", ErrStageUnrecorded, job.ID, err)
	}

	metrics.ObserveStage(metrics.StageImage, metrics.OutcomeFailed, started)
	metrics.JobsProcessed.WithLabelValues(metrics.StageAI, metrics.OutcomeSkipped).Inc()
	invalidate(ctx, s.cache, job)
	logger.Error(ctx, "image stage failed", "jobId", job.ID.String(), "userId", job.UserID.String(), "error", cause)

	return fmt.Errorf("%w: job #%s: %v", ErrStageFailed, job.ID, cause)
}

// enqueueAnalysis publishes the enrichment message. A publish failure is
// recorded on the job as an enrichment error; the image stage stays Completed.
func (s *imageProcessorSrv) enqueueAnalysis(ctx context.Context, job *model.Job, res *model.ImageStageResult) {
	source := job.OriginalURL
	if u, ok := res.Optimized[webFormat]; ok {
		source = u
	}
	msg := port.AIJobMessage{JobID: job.ID.String(), UserID: job.UserID.String(), SourceImageURL: source}

	err := s.pub.PublishAIJob(ctx, msg)
	if err == nil {
		return
	}

	metrics.PublishFailures.WithLabelValues(metrics.QueueAIJobs).Inc()
	logger.Error(ctx, "publish failure post-commit",
		"jobId", msg.JobID, "userId", msg.UserID, "queue", metrics.QueueAIJobs, "error", err)

	aiRes := model.AIStageResult{
		AIStatus:       model.AIStatusError,
		AIErrorMessage: strPtr("enqueue AI analysis: " + err.Error()),
		AIRetryCount:   job.AIRetryCount,
		AIAnalysis:     job.AIAnalysis,
	}
	if err := s.repo.UpdateAIStage(ctx, job.ID, aiRes); err != nil {
		logger.Error(ctx, "failed to record enrichment enqueue failure", "jobId", msg.JobID, "error", err)
	}
	invalidate(ctx, s.cache, job)
}
