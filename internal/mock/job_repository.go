package mock

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// JobRepo is an in-memory port.JobRepository that mimics the SQL claim guards.
type JobRepo struct {
	mu   sync.Mutex
	Jobs map[uuid.UUID]*model.Job

	// errors
	CreateErr      error
	GetErr         error
	ListErr        error
	CountErr       error
	DeleteErr      error
	ClaimErr       error
	ReleaseErr     error
	UpdateImageErr error
	UpdateAIErr    error

	// captured inputs
	Created      *model.Job
	Deleted      []uuid.UUID
	ImageResults []model.ImageStageResult
	AIResults    []model.AIStageResult
	Released     []uuid.UUID
	ListLimit    int
	ListOffset   int
}

func NewJobRepo(jobs ...*model.Job) *JobRepo {
	r := &JobRepo{Jobs: make(map[uuid.UUID]*model.Job)}
	for _, j := range jobs {
		r.Jobs[j.ID] = j
	}
	return r
}

func (r *JobRepo) Get(id uuid.UUID) *model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.Jobs[id]; ok {
		cp := *j
		return &cp
	}
	return nil
}

func (r *JobRepo) Create(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created = job
	if r.CreateErr != nil {
		return r.CreateErr
	}
	cp := *job
	r.Jobs[job.ID] = &cp
	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	j, ok := r.Jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *j
	return &cp, nil
}

func (r *JobRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Job, error) {
	j, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return j, nil
}

func (r *JobRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Job, error) {
	r.mu.Lock()
	r.ListLimit, r.ListOffset = limit, offset
	r.mu.Unlock()
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	all := r.filter(func(j *model.Job) bool { return j.UserID == userID })
	sort.Slice(all, func(a, b int) bool { return all[a].CreatedAt.After(all[b].CreatedAt) })
	if offset >= len(all) {
		return []*model.Job{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *JobRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if r.CountErr != nil {
		return 0, r.CountErr
	}
	return len(r.filter(func(j *model.Job) bool { return j.UserID == userID })), nil
}

func (r *JobRepo) ListCreatedBefore(ctx context.Context, before time.Time) ([]*model.Job, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	all := r.filter(func(j *model.Job) bool { return j.CreatedAt.Before(before) })
	sort.Slice(all, func(a, b int) bool { return all[a].CreatedAt.Before(all[b].CreatedAt) })
	return all, nil
}

func (r *JobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.Deleted = append(r.Deleted, id)
	delete(r.Jobs, id)
	return nil
}

func (r *JobRepo) ClaimImageProcessing(ctx context.Context, id uuid.UUID, startedAt, staleBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ClaimErr != nil {
		return false, r.ClaimErr
	}
	j, ok := r.Jobs[id]
	if !ok {
		return false, nil
	}
	stale := j.Status == model.JobStatusProcessing && j.StartedAt != nil && j.StartedAt.Before(staleBefore)
	if j.Status != model.JobStatusPending && j.Status != model.JobStatusError && !stale {
		return false, nil
	}
	j.Status = model.JobStatusProcessing
	j.StartedAt = &startedAt
	return true, nil
}

func (r *JobRepo) ReleaseImageClaim(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Released = append(r.Released, id)
	if r.ReleaseErr != nil {
		return r.ReleaseErr
	}
	if j, ok := r.Jobs[id]; ok && j.Status == model.JobStatusProcessing {
		j.Status = model.JobStatusPending
		j.StartedAt = nil
	}
	return nil
}

func (r *JobRepo) UpdateImageStage(ctx context.Context, id uuid.UUID, res model.ImageStageResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ImageResults = append(r.ImageResults, res)
	if r.UpdateImageErr != nil {
		return r.UpdateImageErr
	}
	if j, ok := r.Jobs[id]; ok {
		j.Status = res.Status
		j.CompletedAt = res.CompletedAt
		j.ErrorMessage = res.ErrorMessage
		j.RetryCount = res.RetryCount
		j.Thumbnails = res.Thumbnails
		j.Optimized = res.Optimized
		j.Metadata = res.Metadata
		j.AIStatus = res.AIStatus
		j.AIErrorMessage = res.AIErrorMessage
	}
	return nil
}

func (r *JobRepo) ClaimAIAnalysis(ctx context.Context, id uuid.UUID, startedAt, staleBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ClaimErr != nil {
		return false, r.ClaimErr
	}
	j, ok := r.Jobs[id]
	if !ok {
		return false, nil
	}
	stale := j.AIStatus == model.AIStatusProcessing && j.AIStartedAt != nil && j.AIStartedAt.Before(staleBefore)
	if j.AIStatus != model.AIStatusPending && j.AIStatus != model.AIStatusError && !stale {
		return false, nil
	}
	j.AIStatus = model.AIStatusProcessing
	j.AIStartedAt = &startedAt
	return true, nil
}

func (r *JobRepo) ReleaseAIClaim(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Released = append(r.Released, id)
	if r.ReleaseErr != nil {
		return r.ReleaseErr
	}
	if j, ok := r.Jobs[id]; ok && j.AIStatus == model.AIStatusProcessing {
		j.AIStatus = model.AIStatusPending
		j.AIStartedAt = nil
	}
	return nil
}

func (r *JobRepo) UpdateAIStage(ctx context.Context, id uuid.UUID, res model.AIStageResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AIResults = append(r.AIResults, res)
	if r.UpdateAIErr != nil {
		return r.UpdateAIErr
	}
	if j, ok := r.Jobs[id]; ok {
		j.AIStatus = res.AIStatus
		j.AICompletedAt = res.AICompletedAt
		j.AIErrorMessage = res.AIErrorMessage
		j.AIRetryCount = res.AIRetryCount
		j.AIAnalysis = res.AIAnalysis
	}
	return nil
}

func (r *JobRepo) filter(keep func(*model.Job) bool) []*model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Job, 0)
	for _, j := range r.Jobs {
		if keep(j) {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out
}
