package storage

import (
	"errors"
	"fmt"

	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
	"github.com/minio/minio-go/v7"
)

var ErrForeignURL = errors.New("storage: url does not point into the bucket")

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		return job.ErrObjectNotFound
	case "NoSuchBucket":
		return job.ErrBucketNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return job.ErrUnauthorized
	default:
		// catch everything else
		return fmt.Errorf("%w: %v", job.ErrInternal, err)
	}
}
