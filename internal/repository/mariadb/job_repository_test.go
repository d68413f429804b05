package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

var jobColumnNames = []string{
	"id", "user_id", "original_url", "original_filename", "file_size", "mime_type", "created_at",
	"status", "started_at", "completed_at", "error_message", "retry_count", "thumbnails", "optimized", "metadata",
	"ai_status", "ai_started_at", "ai_completed_at", "ai_error_message", "ai_retry_count", "ai_analysis",
}

func idBytes(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	v, err := id.Value()
	if err != nil {
		t.Fatalf("uuid value: %v", err)
	}
	return v.([]byte)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB, mock
}

func TestJobRepository_Create(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	job := &model.Job{
		ID:               uuid.NewUUID(),
		UserID:           uuid.NewUUID(),
		OriginalURL:      "http://minio:9000/images/originals/u/j.png",
		OriginalFilename: "cat.png",
		FileSize:         2048,
		MimeType:         "image/png",
		CreatedAt:        time.Now().UTC(),
		Status:           model.JobStatusPending,
		AIStatus:         model.AIStatusPending,
	}

	mock.ExpectExec(regexp.QuoteMeta(`
      INSERT INTO jobs
        (id, user_id, original_url, original_filename, file_size, mime_type, created_at, status, ai_status)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)).
		WithArgs(
			job.ID, job.UserID, job.OriginalURL, job.OriginalFilename,
			job.FileSize, job.MimeType, sqlmock.AnyArg(), job.Status, job.AIStatus,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), job); err != nil {
		t.Errorf("Create() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_Create_ExecError(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	mock.ExpectExec("INSERT INTO jobs").WillReturnError(errors.New("db.Exec failed"))

	err := repo.Create(context.Background(), &model.Job{ID: uuid.NewUUID()})
	if err == nil || err.Error() != "db.Exec failed" {
		t.Fatalf("expected 'db.Exec failed', got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_GetByID(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id := uuid.NewUUID()
	userID := uuid.NewUUID()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	completed := created.Add(time.Minute)

	rows := sqlmock.NewRows(jobColumnNames).AddRow(
		idBytes(t, id), idBytes(t, userID), "http://x/images/originals/a.png", "a.png", int64(100), "image/png", created,
		"Completed", created, completed, nil, 0,
		[]byte(`{"thumb-128":"http://x/t.webp"}`), []byte(`{"webp":"http://x/o.webp"}`),
		[]byte(`{"width":10,"height":5,"format":"png","fileSize":100,"exif":{},"dominantColors":["#E00000"]}`),
		"Completed", created, completed, nil, 0,
		[]byte(`{"summary":"a cat","ocrText":null,"tags":[{"label":"cat","confidence":0.9}],"safety":{"adult":false,"violence":false,"selfHarm":false},"meta":{"model":"m","latencyMs":12}}`),
	)
	mock.ExpectQuery(`SELECT .+ FROM jobs WHERE id = \?`).
		WithArgs(id).
		WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}
	if job.ID != id || job.UserID != userID {
		t.Errorf("ids = %s/%s; want %s/%s", job.ID, job.UserID, id, userID)
	}
	if job.Status != model.JobStatusCompleted || job.AIStatus != model.AIStatusCompleted {
		t.Errorf("statuses = %q/%q", job.Status, job.AIStatus)
	}
	if job.CompletedAt == nil || !job.CompletedAt.Equal(completed) {
		t.Errorf("CompletedAt = %v; want %v", job.CompletedAt, completed)
	}
	if job.ErrorMessage != nil {
		t.Errorf("ErrorMessage = %v; want nil", *job.ErrorMessage)
	}
	if job.Thumbnails["thumb-128"] != "http://x/t.webp" || job.Optimized["webp"] != "http://x/o.webp" {
		t.Errorf("asset urls = %v / %v", job.Thumbnails, job.Optimized)
	}
	if job.Metadata == nil || job.Metadata.Width != 10 || job.Metadata.DominantColors[0] != "#E00000" {
		t.Errorf("Metadata = %+v", job.Metadata)
	}
	if job.AIAnalysis == nil || job.AIAnalysis.Summary != "a cat" || len(job.AIAnalysis.Tags) != 1 {
		t.Errorf("AIAnalysis = %+v", job.AIAnalysis)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_GetByID_NullResults(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id := uuid.NewUUID()
	rows := sqlmock.NewRows(jobColumnNames).AddRow(
		idBytes(t, id), idBytes(t, uuid.NewUUID()), "u", "a.png", int64(1), "image/png", time.Now(),
		"Pending", nil, nil, nil, 0, nil, nil, nil,
		"Pending", nil, nil, nil, 0, nil,
	)
	mock.ExpectQuery(`SELECT .+ FROM jobs WHERE id = \?`).WithArgs(id).WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}
	if job.StartedAt != nil || job.Thumbnails != nil || job.Metadata != nil || job.AIAnalysis != nil {
		t.Errorf("expected nil result fields, got %+v", job)
	}
}

func TestJobRepository_GetByID_NotFound(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id := uuid.NewUUID()
	mock.ExpectQuery(`SELECT .+ FROM jobs WHERE id = \?`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(jobColumnNames))

	_, err := repo.GetByID(context.Background(), id)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestJobRepository_GetByIDForUser(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id, userID := uuid.NewUUID(), uuid.NewUUID()
	mock.ExpectQuery(`SELECT .+ FROM jobs WHERE id = \? AND user_id = \?`).
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows(jobColumnNames))

	_, err := repo.GetByIDForUser(context.Background(), id, userID)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_ListByUser(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	userID := uuid.NewUUID()
	rows := sqlmock.NewRows(jobColumnNames)
	for i := 0; i < 2; i++ {
		rows.AddRow(
			idBytes(t, uuid.NewUUID()), idBytes(t, userID), "u", "a.png", int64(1), "image/png", time.Now(),
			"Pending", nil, nil, nil, 0, nil, nil, nil,
			"Pending", nil, nil, nil, 0, nil,
		)
	}
	mock.ExpectQuery(`SELECT .+ FROM jobs WHERE user_id = \? ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(userID, 20, 40).
		WillReturnRows(rows)

	jobs, err := repo.ListByUser(context.Background(), userID, 20, 40)
	if err != nil {
		t.Fatalf("ListByUser() returned unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_ListByUser_QueryError(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	mock.ExpectQuery(`SELECT .+ FROM jobs`).WillReturnError(errors.New("query fail"))

	if _, err := repo.ListByUser(context.Background(), uuid.NewUUID(), 20, 0); err == nil || err.Error() != "query fail" {
		t.Fatalf("expected query fail, got %v", err)
	}
}

func TestJobRepository_CountByUser(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	userID := uuid.NewUUID()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM jobs WHERE user_id = ?`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	n, err := repo.CountByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("CountByUser() returned unexpected error: %v", err)
	}
	if n != 41 {
		t.Errorf("count = %d; want 41", n)
	}
}

func TestJobRepository_ListCreatedBefore(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	mock.ExpectQuery(`SELECT .+ FROM jobs WHERE created_at < \? ORDER BY created_at ASC`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows(jobColumnNames))

	jobs, err := repo.ListCreatedBefore(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ListCreatedBefore() returned unexpected error: %v", err)
	}
	if jobs == nil || len(jobs) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", jobs)
	}
}

func TestJobRepository_Delete(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id := uuid.NewUUID()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM jobs WHERE id = ?`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_ClaimImageProcessing(t *testing.T) {
	cases := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"claimed", 1, true},
		{"held elsewhere", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sqlDB, mock := newMock(t)
			repo := NewJobRepository(sqlDB)

			id := uuid.NewUUID()
			now := time.Now()
			mock.ExpectExec(`UPDATE jobs\s+SET status = 'Processing', started_at = \?\s+WHERE id = \?`).
				WithArgs(now, id, now.Add(-15*time.Minute)).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			got, err := repo.ClaimImageProcessing(context.Background(), id, now, now.Add(-15*time.Minute))
			if err != nil {
				t.Fatalf("ClaimImageProcessing() returned unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("claimed = %v; want %v", got, tc.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("there were unfulfilled expectations: %s", err)
			}
		})
	}
}

func TestJobRepository_ClaimAIAnalysis_ExecError(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	mock.ExpectExec(`UPDATE jobs\s+SET ai_status = 'Processing'`).WillReturnError(errors.New("lock wait timeout"))

	ok, err := repo.ClaimAIAnalysis(context.Background(), uuid.NewUUID(), time.Now(), time.Now())
	if err == nil || ok {
		t.Fatalf("expected error and no claim, got %v / %v", ok, err)
	}
}

func TestJobRepository_ReleaseClaims(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id := uuid.NewUUID()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE jobs SET status = 'Pending', started_at = NULL WHERE id = ? AND status = 'Processing'`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE jobs SET ai_status = 'Pending', ai_started_at = NULL WHERE id = ? AND ai_status = 'Processing'`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ReleaseImageClaim(context.Background(), id); err != nil {
		t.Fatalf("ReleaseImageClaim() returned unexpected error: %v", err)
	}
	if err := repo.ReleaseAIClaim(context.Background(), id); err != nil {
		t.Fatalf("ReleaseAIClaim() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_UpdateImageStage_Failure(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id := uuid.NewUUID()
	msg := "decode image: unknown format"
	skipped := model.AISkippedMessage
	res := model.ImageStageResult{
		Status:         model.JobStatusError,
		ErrorMessage:   &msg,
		RetryCount:     1,
		AIStatus:       model.AIStatusSkipped,
		AIErrorMessage: &skipped,
	}

	mock.ExpectExec(`UPDATE jobs\s+SET\s+status\s+= \?`).
		WithArgs(
			res.Status, nil, msg, 1, nil, nil, nil,
			res.AIStatus, skipped, id,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateImageStage(context.Background(), id, res); err != nil {
		t.Fatalf("UpdateImageStage() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestJobRepository_UpdateAIStage(t *testing.T) {
	sqlDB, mock := newMock(t)
	repo := NewJobRepository(sqlDB)

	id := uuid.NewUUID()
	now := time.Now()
	res := model.AIStageResult{
		AIStatus:      model.AIStatusCompleted,
		AICompletedAt: &now,
		AIAnalysis:    &model.AIAnalysis{Summary: "a dog"},
	}

	mock.ExpectExec(`UPDATE jobs\s+SET\s+ai_status\s+= \?`).
		WithArgs(res.AIStatus, sqlmock.AnyArg(), nil, 0, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateAIStage(context.Background(), id, res); err != nil {
		t.Fatalf("UpdateAIStage() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
