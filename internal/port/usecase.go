package port

import (
	"context"
	"io"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type UUIDGen func() uuid.UUID

// AIView is the enrichment part of a job as returned to clients.
type AIView struct {
	Status       model.AIStatus    `json:"status"`
	StartedAt    *time.Time        `json:"startedAt"`
	CompletedAt  *time.Time        `json:"completedAt"`
	ErrorMessage *string           `json:"errorMessage"`
	RetryCount   int               `json:"retryCount"`
	Analysis     *model.AIAnalysis `json:"analysis"`
}

// JobView is a job as returned to clients.
type JobView struct {
	ID               uuid.UUID            `json:"id"`
	UserID           uuid.UUID            `json:"userId"`
	OriginalURL      string               `json:"originalUrl"`
	OriginalFilename string               `json:"originalFilename"`
	FileSize         int64                `json:"fileSize"`
	MimeType         string               `json:"mimeType"`
	CreatedAt        time.Time            `json:"createdAt"`
	Status           model.JobStatus      `json:"status"`
	StartedAt        *time.Time           `json:"startedAt"`
	CompletedAt      *time.Time           `json:"completedAt"`
	ErrorMessage     *string              `json:"errorMessage"`
	RetryCount       int                  `json:"retryCount"`
	Thumbnails       map[string]string    `json:"thumbnails"`
	Optimized        map[string]string    `json:"optimized"`
	Metadata         *model.ImageMetadata `json:"metadata"`
	AI               AIView               `json:"ai"`
}

// JobPage is one page of a user's jobs, newest first.
type JobPage struct {
	Items      []JobView `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalCount int       `json:"totalCount"`
	TotalPages int       `json:"totalPages"`
}

// ImageUploader stores an uploaded original and creates its job.
type ImageUploader interface {
	UploadImage(ctx context.Context, in UploadImageInput) (*UploadImageOutput, error)
}
type UploadImageInput struct {
	UserID   uuid.UUID
	Filename string
	MimeType string
	Size     int64
	Reader   io.Reader
}
type UploadImageOutput struct {
	ID          uuid.UUID       `json:"id"`
	OriginalURL string          `json:"originalUrl"`
	Status      model.JobStatus `json:"status"`
}

// JobCreator inserts a pending job and enqueues its image stage.
type JobCreator interface {
	CreateJob(ctx context.Context, in CreateJobInput) (*JobView, error)
}
type CreateJobInput struct {
	JobID            uuid.UUID
	UserID           uuid.UUID
	OriginalURL      string
	OriginalFilename string
	FileSize         int64
	MimeType         string
}

// ImageProcessor runs the image stage for one queued job.
type ImageProcessor interface {
	ProcessImage(ctx context.Context, msg ImageJobMessage) error
}

// ImageAnalyser runs the enrichment stage for one queued job.
type ImageAnalyser interface {
	AnalyseImage(ctx context.Context, msg AIJobMessage) error
}

// JobGetter returns a single job owned by the caller.
type JobGetter interface {
	GetJob(ctx context.Context, jobID, userID uuid.UUID) (*JobView, error)
}

// JobLister returns a page of the caller's jobs.
type JobLister interface {
	ListJobs(ctx context.Context, in ListJobsInput) (*JobPage, error)
}
type ListJobsInput struct {
	UserID   uuid.UUID
	Page     int
	PageSize int
}

// RetentionSweeper deletes jobs past the retention age together with their blobs.
type RetentionSweeper interface {
	Sweep(ctx context.Context) (SweepReport, error)
}
type SweepReport struct {
	Found   int
	Cleaned int
}

// Authenticator registers users and logs them in.
type Authenticator interface {
	Register(ctx context.Context, in CredentialsInput) (*AuthToken, error)
	Login(ctx context.Context, in CredentialsInput) (*AuthToken, error)
}
type CredentialsInput struct {
	Email    string
	Password string
}
type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
