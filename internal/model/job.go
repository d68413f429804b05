package model

import (
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "Pending"
	JobStatusProcessing JobStatus = "Processing"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusError      JobStatus = "Error"
)

// IsTerminal reports whether no further automatic transition happens from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

type AIStatus string

const (
	AIStatusPending    AIStatus = "Pending"
	AIStatusProcessing AIStatus = "Processing"
	AIStatusCompleted  AIStatus = "Completed"
	AIStatusError      AIStatus = "Error"
	AIStatusSkipped    AIStatus = "Skipped"
)

func (s AIStatus) IsTerminal() bool {
	return s == AIStatusCompleted || s == AIStatusError || s == AIStatusSkipped
}

// AISkippedMessage is stored on jobs whose image stage failed.
const AISkippedMessage = "Skipped due to image processing failure."

// Job is one uploaded image and its two-stage processing record.
type Job struct {
	ID     uuid.UUID
	UserID uuid.UUID

	OriginalURL      string
	OriginalFilename string
	FileSize         int64
	MimeType         string
	CreatedAt        time.Time

	Status       JobStatus
	StartedAt    *time.Time
	CompletedAt  *time.Time
	ErrorMessage *string
	RetryCount   int
	Thumbnails   AssetURLs
	Optimized    AssetURLs
	Metadata     *ImageMetadata

	AIStatus       AIStatus
	AIStartedAt    *time.Time
	AICompletedAt  *time.Time
	AIErrorMessage *string
	AIRetryCount   int
	AIAnalysis     *AIAnalysis
}

// ImageStageResult is what the image stage persists on a job, success or failure.
type ImageStageResult struct {
	Status       JobStatus
	CompletedAt  *time.Time
	ErrorMessage *string
	RetryCount   int
	Thumbnails   AssetURLs
	Optimized    AssetURLs
	Metadata     *ImageMetadata

	AIStatus       AIStatus
	AIErrorMessage *string
}

// AIStageResult is what the enrichment stage persists on a job.
type AIStageResult struct {
	AIStatus       AIStatus
	AICompletedAt  *time.Time
	AIErrorMessage *string
	AIRetryCount   int
	AIAnalysis     *AIAnalysis
}
