package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

type jobListerSrv struct {
	repo   port.JobRepository
	cache  port.Cache
	signer urlSigner
}

func NewJobLister(repo port.JobRepository, cache port.Cache, strg port.Storage, signedURLTTL time.Duration) port.JobLister {
	return &jobListerSrv{
		repo:   repo,
		cache:  cache,
		signer: urlSigner{strg: strg, ttl: ClampSignedURLTTL(signedURLTTL)},
	}
}

// NormalisePage applies the paging defaults and rejects out-of-range values.
func NormalisePage(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return 0, 0, fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidPage, page)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return 0, 0, fmt.Errorf("%w: pageSize must be between 1 and %d, got %d", ErrInvalidPage, MaxPageSize, pageSize)
	}
	return page, pageSize, nil
}

func (s *jobListerSrv) ListJobs(ctx context.Context, in port.ListJobsInput) (*port.JobPage, error) {
	page, pageSize, err := NormalisePage(in.Page, in.PageSize)
	if err != nil {
		return nil, err
	}

	result, err := s.load(ctx, in, page, pageSize)
	if err != nil {
		return nil, err
	}
	// signed URLs never enter the cached payload
	for i := range result.Items {
		s.signer.signView(ctx, &result.Items[i])
	}
	return result, nil
}

func (s *jobListerSrv) load(ctx context.Context, in port.ListJobsInput, page, pageSize int) (*port.JobPage, error) {
	// the version is taken before the store read; an invalidation in between
	// moves readers to a newer version and strands the page stored below
	version, err := s.cache.JobListVersion(ctx, in.UserID)
	useCache := err == nil
	if err != nil {
		logger.Warnf(ctx, "cache version lookup failed for jobs of user #%s: %v", in.UserID, err)
	}

	if useCache {
		data, err := s.cache.GetJobList(ctx, in.UserID, version, page, pageSize)
		if err != nil {
			logger.Warnf(ctx, "cache lookup failed for jobs of user #%s: %v", in.UserID, err)
		}
		if data != nil {
			var cached port.JobPage
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
			logger.Warnf(ctx, "ignoring undecodable cached job list for user #%s", in.UserID)
		}
	}

	total, err := s.repo.CountByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	jobs, err := s.repo.ListByUser(ctx, in.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	result := &port.JobPage{
		Items:      make([]port.JobView, 0, len(jobs)),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, j := range jobs {
		result.Items = append(result.Items, ToView(j))
	}

	if !useCache {
		return result, nil
	}
	if data, err := json.Marshal(result); err != nil {
		logger.Warnf(ctx, "failed to encode job list for cache: %v", err)
	} else {
		s.cache.SetJobList(ctx, in.UserID, version, page, pageSize, data, ListCacheTTL)
	}
	return result, nil
}
