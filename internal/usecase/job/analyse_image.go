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

type imageAnalyserSrv struct {
	repo   port.JobRepository
	strg   port.Storage
	cache  port.Cache
	vision port.VisionClient
	now    func() time.Time
}

func NewImageAnalyser(repo port.JobRepository, strg port.Storage, cache port.Cache, vision port.VisionClient) port.ImageAnalyser {
	return &imageAnalyserSrv{repo: repo, strg: strg, cache: cache, vision: vision, now: time.Now}
}

// AnalyseImage runs the enrichment stage. Its error contract matches ProcessImage.
func (s *imageAnalyserSrv) AnalyseImage(ctx context.Context, msg port.AIJobMessage) error {
	id, err := parseJobID(msg.JobID)
	if err != nil {
		return err
	}
	if msg.SourceImageURL == "" {
		return fmt.Errorf("%w: sourceImageUrl is empty", ErrInvalidMessage)
	}

	job, err := loadJob(ctx, s.repo, id)
	if err != nil {
		return err
	}

	started := s.now().UTC()
	claimed, err := s.repo.ClaimAIAnalysis(ctx, id, started, started.Add(-ClaimStaleAfter))
	if err != nil {
		return fmt.Errorf("claim job #%s: %w", id, err)
	}
	if !claimed {
		logger.Info(ctx, "AI stage already claimed or finished", "jobId", msg.JobID, "aiStatus", string(job.AIStatus))
		return ErrJobClaimed
	}
	job.AIStatus = model.AIStatusProcessing
	job.AIStartedAt = &started
	invalidate(ctx, s.cache, job)
	logger.Info(ctx, "AI stage started", "jobId", msg.JobID, "userId", job.UserID.String())

	analysis, err := s.run(ctx, msg.SourceImageURL)
	if err == nil {
		completedAt := s.now().UTC()
		err = s.repo.UpdateAIStage(ctx, id, model.AIStageResult{
			AIStatus:      model.AIStatusCompleted,
			AICompletedAt: &completedAt,
			AIRetryCount:  job.AIRetryCount,
			AIAnalysis:    analysis,
		})
		if err != nil {
			err = fmt.Errorf("persist AI results: %w", err)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			release(ctx, job, s.repo.ReleaseAIClaim)
			logger.Warn(ctx, "AI stage interrupted, leaving message for redelivery", "jobId", msg.JobID)
			return ctx.Err()
		}
		return s.fail(ctx, job, started, err)
	}

	metrics.ObserveStage(metrics.StageAI, metrics.OutcomeCompleted, started)
	invalidate(ctx, s.cache, job)
	logger.Info(ctx, "AI stage completed", "jobId", msg.JobID, "userId", job.UserID.String(),
		"tags", len(analysis.Tags), "durationMs", time.Since(started).Milliseconds())
	return nil
}

func (s *imageAnalyserSrv) run(ctx context.Context, sourceURL string) (*model.AIAnalysis, error) {
	data, err := download(ctx, s.strg, sourceURL)
	if err != nil {
		return nil, err
	}
	analysis, err := s.vision.Analyse(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("analyse: %w", err)
	}
	return analysis, nil
}

func (s *imageAnalyserSrv) fail(ctx context.Context, job *model.Job, started time.Time, cause error) error {
	res := model.AIStageResult{
		AIStatus:       model.AIStatusError,
		AICompletedAt:  job.AICompletedAt,
		AIErrorMessage: strPtr(cause.Error()),
		AIRetryCount:   job.AIRetryCount + 1,
		AIAnalysis:     job.AIAnalysis,
	}
	if err := s.repo.UpdateAIStage(ctx, job.ID, res); err != nil {
		logger.Error(ctx, "failed to record AI stage failure", "jobId", job.ID.String(), "error", err, "cause", cause)
		release(ctx, job, s.repo.ReleaseAIClaim)
		invalidate(ctx, s.cache, job)
		return fmt.Errorf("%w: job #%s: %v", ErrStageUnrecorded, job.ID, err)
	}

	metrics.ObserveStage(metrics.StageAI, metrics.OutcomeFailed, started)
	invalidate(ctx, s.cache, job)
	logger.Error(ctx, "AI stage failed", "jobId", job.ID.String(), "userId", job.UserID.String(), "error", cause)

	return fmt.Errorf("%w: job #%s: %v", ErrStageFailed, job.ID, cause)
}
