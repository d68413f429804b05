package cache

import (
	"context"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type NoopCache struct{}

// compile-time check: *NoopCache must satisfy port.Cache
var _ port.Cache = (*NoopCache)(nil)

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) GetJobDetails(ctx context.Context, userID, jobID uuid.UUID) ([]byte, error) {
	return nil, nil // always cache miss
}

func (n *NoopCache) SetJobDetails(ctx context.Context, userID, jobID uuid.UUID, data []byte, ttl time.Duration) {
}

func (n *NoopCache) DeleteJobDetails(ctx context.Context, userID, jobID uuid.UUID) error { return nil }

func (n *NoopCache) JobListVersion(ctx context.Context, userID uuid.UUID) (int64, error) { return 0, nil }

func (n *NoopCache) GetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int) ([]byte, error) {
	return nil, nil
}

func (n *NoopCache) SetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int, data []byte, ttl time.Duration) {
}

func (n *NoopCache) InvalidateJobLists(ctx context.Context, userID uuid.UUID) error { return nil }
