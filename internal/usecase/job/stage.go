package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// releaseTimeout bounds the claim release that runs after the delivery context is gone.
const releaseTimeout = 5 * time.Second

func parseJobID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: jobId %q: %v", ErrInvalidMessage, raw, err)
	}
	return id, nil
}

// loadJob maps a missing row to ErrJobNotFound.
func loadJob(ctx context.Context, repo port.JobRepository, id uuid.UUID) (*model.Job, error) {
	job, err := repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job #%s: %w", id, err)
	}
	return job, nil
}

func download(ctx context.Context, strg port.Storage, rawURL string) ([]byte, error) {
	key, err := strg.KeyFromURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("resolve storage key: %w", err)
	}
	rc, err := strg.GetFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %q: %w", key, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return data, nil
}

// invalidate drops the cached detail view and every cached list page of job's owner.
func invalidate(ctx context.Context, cache port.Cache, job *model.Job) {
	if err := cache.DeleteJobDetails(ctx, job.UserID, job.ID); err != nil {
		logger.Warnf(ctx, "failed to invalidate cached job #%s: %v", job.ID, err)
	}
	if err := cache.InvalidateJobLists(ctx, job.UserID); err != nil {
		logger.Warnf(ctx, "failed to invalidate cached job lists for user #%s: %v", job.UserID, err)
	}
}

// release hands an interrupted claim back so the redelivered message can take it.
func release(ctx context.Context, job *model.Job, fn func(context.Context, uuid.UUID) error) {
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := fn(relCtx, job.ID); err != nil {
		logger.Warnf(relCtx, "failed to release claim on job #%s: %v", job.ID, err)
	}
}

func strPtr(s string) *string {
	return &s
}
