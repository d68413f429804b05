package port

import (
	"context"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// Cache stores serialized job views. It is never authoritative: every
// miss or error falls back to the job store.
type Cache interface {
	GetJobDetails(ctx context.Context, userID, jobID uuid.UUID) ([]byte, error)
	SetJobDetails(ctx context.Context, userID, jobID uuid.UUID, data []byte, ttl time.Duration)
	DeleteJobDetails(ctx context.Context, userID, jobID uuid.UUID) error

	// JobListVersion is the user's current list generation. Pages are read and
	// written under the version taken before the store fetch, so a page built
	// from a read that raced an invalidation is never served.
	JobListVersion(ctx context.Context, userID uuid.UUID) (int64, error)
	GetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int) ([]byte, error)
	// SetJobList stores a page and tags it with userID for InvalidateJobLists.
	SetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int, data []byte, ttl time.Duration)
	// InvalidateJobLists moves userID to a new list generation and drops its pages.
	InvalidateJobLists(ctx context.Context, userID uuid.UUID) error
}
