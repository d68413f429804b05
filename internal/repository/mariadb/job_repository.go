package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type JobRepository struct {
	db *sql.DB
}

// compile-time check: *JobRepository must satisfy port.JobRepository
var _ port.JobRepository = (*JobRepository)(nil)

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, user_id, original_url, original_filename, file_size, mime_type, created_at,
        status, started_at, completed_at, error_message, retry_count, thumbnails, optimized, metadata,
        ai_status, ai_started_at, ai_completed_at, ai_error_message, ai_retry_count, ai_analysis`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		job        model.Job
		metadata   []byte
		aiAnalysis []byte
	)
	if err := row.Scan(
		&job.ID, &job.UserID, &job.OriginalURL, &job.OriginalFilename,
		&job.FileSize, &job.MimeType, &job.CreatedAt,
		&job.Status, &job.StartedAt, &job.CompletedAt, &job.ErrorMessage, &job.RetryCount,
		&job.Thumbnails, &job.Optimized, &metadata,
		&job.AIStatus, &job.AIStartedAt, &job.AICompletedAt, &job.AIErrorMessage, &job.AIRetryCount,
		&aiAnalysis,
	); err != nil {
		return nil, err
	}

	// NULL JSON columns stay nil pointers on the model
	if metadata != nil {
		var m model.ImageMetadata
		if err := m.Scan(metadata); err != nil {
			return nil, fmt.Errorf("job #%s: %w", job.ID, err)
		}
		job.Metadata = &m
	}
	if aiAnalysis != nil {
		var a model.AIAnalysis
		if err := a.Scan(aiAnalysis); err != nil {
			return nil, fmt.Errorf("job #%s: %w", job.ID, err)
		}
		job.AIAnalysis = &a
	}

	return &job, nil
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	logger.Debugf(ctx, "creating database record for job #%s, at status %q...", job.ID, job.Status)

	const query = `
      INSERT INTO jobs
        (id, user_id, original_url, original_filename, file_size, mime_type, created_at, status, ai_status)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.UserID, job.OriginalURL,
		job.OriginalFilename, job.FileSize, job.MimeType,
		job.CreatedAt, job.Status, job.AIStatus,
	)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	logger.Debugf(ctx, "fetching job #%s from the database...", id)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`
	return scanJob(r.db.QueryRowContext(ctx, query, id))
}

func (r *JobRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Job, error) {
	logger.Debugf(ctx, "fetching job #%s for user #%s from the database...", id, userID)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ? AND user_id = ?`
	return scanJob(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *JobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Job, error) {
	logger.Debugf(ctx, "listing jobs for user #%s (limit %d, offset %d)...", userID, limit, offset)

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	return r.queryJobs(ctx, query, userID, limit, offset)
}

func (r *JobRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM jobs WHERE user_id = ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *JobRepository) ListCreatedBefore(ctx context.Context, before time.Time) ([]*model.Job, error) {
	logger.Debugf(ctx, "listing jobs created before %s...", before.Format(time.RFC3339))

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE created_at < ? ORDER BY created_at ASC`
	return r.queryJobs(ctx, query, before)
}

func (r *JobRepository) queryJobs(ctx context.Context, query string, args ...any) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]*model.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Debugf(ctx, "deleting database record for job #%s...", id)

	const query = `DELETE FROM jobs WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *JobRepository) ClaimImageProcessing(ctx context.Context, id uuid.UUID, startedAt, staleBefore time.Time) (bool, error) {
	const query = `
      UPDATE jobs
      SET status = 'Processing', started_at = ?
      WHERE id = ?
        AND (status IN ('Pending', 'Error') OR (status = 'Processing' AND started_at < ?))
    `
	return r.claim(ctx, query, startedAt, id, staleBefore)
}

func (r *JobRepository) ReleaseImageClaim(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE jobs SET status = 'Pending', started_at = NULL WHERE id = ? AND status = 'Processing'`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *JobRepository) UpdateImageStage(ctx context.Context, id uuid.UUID, res model.ImageStageResult) error {
	logger.Debugf(ctx, "updating image stage for job #%s, with status %q...", id, res.Status)

	const query = `
      UPDATE jobs
      SET
        status           = ?,
        completed_at     = ?,
        error_message    = ?,
        retry_count      = ?,
        thumbnails       = ?,
        optimized        = ?,
        metadata         = ?,
        ai_status        = ?,
        ai_error_message = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		res.Status,
		res.CompletedAt,
		res.ErrorMessage,
		res.RetryCount,
		res.Thumbnails,
		res.Optimized,
		res.Metadata,
		res.AIStatus,
		res.AIErrorMessage,
		id, // WHERE clause
	)
	return err
}

func (r *JobRepository) ClaimAIAnalysis(ctx context.Context, id uuid.UUID, startedAt, staleBefore time.Time) (bool, error) {
	const query = `
      UPDATE jobs
      SET ai_status = 'Processing', ai_started_at = ?
      WHERE id = ?
        AND (ai_status IN ('Pending', 'Error') OR (ai_status = 'Processing' AND ai_started_at < ?))
    `
	return r.claim(ctx, query, startedAt, id, staleBefore)
}

func (r *JobRepository) ReleaseAIClaim(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE jobs SET ai_status = 'Pending', ai_started_at = NULL WHERE id = ? AND ai_status = 'Processing'`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *JobRepository) UpdateAIStage(ctx context.Context, id uuid.UUID, res model.AIStageResult) error {
	logger.Debugf(ctx, "updating AI stage for job #%s, with status %q...", id, res.AIStatus)

	const query = `
      UPDATE jobs
      SET
        ai_status        = ?,
        ai_completed_at  = ?,
        ai_error_message = ?,
        ai_retry_count   = ?,
        ai_analysis      = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		res.AIStatus,
		res.AICompletedAt,
		res.AIErrorMessage,
		res.AIRetryCount,
		res.AIAnalysis,
		id, // WHERE clause
	)
	return err
}

func (r *JobRepository) claim(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
