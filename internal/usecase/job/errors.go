package job

import "errors"

var (
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrUnauthorized   = errors.New("storage: unauthorized")
	ErrInternal       = errors.New("storage: internal error")
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrJobClaimed     = errors.New("job stage already claimed")
	ErrStageFailed    = errors.New("job stage failed")
	// ErrStageUnrecorded means a stage failed and the failure could not be
	// written back, so the job still shows the stage in flight.
	ErrStageUnrecorded = errors.New("job stage failure not recorded")
	ErrInvalidUpload  = errors.New("invalid upload")
	ErrInvalidMessage = errors.New("invalid queue message")
	ErrInvalidPage    = errors.New("invalid page")
)
