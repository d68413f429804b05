package port

import (
	"context"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// JobRepository defines persistence operations for jobs.
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Job, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Job, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ListCreatedBefore(ctx context.Context, before time.Time) ([]*model.Job, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ClaimImageProcessing moves the job to Processing unless another delivery
	// holds a claim younger than staleBefore or the stage already completed.
	// It reports whether the claim was taken.
	ClaimImageProcessing(ctx context.Context, id uuid.UUID, startedAt, staleBefore time.Time) (bool, error)
	ReleaseImageClaim(ctx context.Context, id uuid.UUID) error
	UpdateImageStage(ctx context.Context, id uuid.UUID, res model.ImageStageResult) error

	ClaimAIAnalysis(ctx context.Context, id uuid.UUID, startedAt, staleBefore time.Time) (bool, error)
	ReleaseAIClaim(ctx context.Context, id uuid.UUID) error
	UpdateAIStage(ctx context.Context, id uuid.UUID, res model.AIStageResult) error
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
