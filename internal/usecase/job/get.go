package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type jobGetterSrv struct {
	repo   port.JobRepository
	cache  port.Cache
	signer urlSigner
}

func NewJobGetter(repo port.JobRepository, cache port.Cache, strg port.Storage, signedURLTTL time.Duration) port.JobGetter {
	return &jobGetterSrv{
		repo:   repo,
		cache:  cache,
		signer: urlSigner{strg: strg, ttl: ClampSignedURLTTL(signedURLTTL)},
	}
}

func (s *jobGetterSrv) GetJob(ctx context.Context, jobID, userID uuid.UUID) (*port.JobView, error) {
	view, err := s.load(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}
	s.signer.signView(ctx, view)
	return view, nil
}

// load returns the unsigned view, from cache when possible.
func (s *jobGetterSrv) load(ctx context.Context, jobID, userID uuid.UUID) (*port.JobView, error) {
	data, err := s.cache.GetJobDetails(ctx, userID, jobID)
	if err != nil {
		logger.Warnf(ctx, "cache lookup failed for job #%s: %v", jobID, err)
	}
	if data != nil {
		var view port.JobView
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
		logger.Warnf(ctx, "ignoring undecodable cache entry for job #%s", jobID)
	}

	job, err := s.repo.GetByIDForUser(ctx, jobID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	view := ToView(job)
	if data, err := json.Marshal(view); err != nil {
		logger.Warnf(ctx, "failed to encode job #%s for cache: %v", jobID, err)
	} else {
		s.cache.SetJobDetails(ctx, userID, jobID, data, DetailsCacheTTL)
	}
	return &view, nil
}
