package job

import (
	"context"
	"fmt"
	"path"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

type imageUploaderSrv struct {
	strg    port.Storage
	creator port.JobCreator
	genID   port.UUIDGen
}

func NewImageUploader(strg port.Storage, creator port.JobCreator, genID port.UUIDGen) port.ImageUploader {
	return &imageUploaderSrv{strg: strg, creator: creator, genID: genID}
}

// ValidateUpload checks the declared facts of an upload before any byte is stored.
func ValidateUpload(filename, mimeType string, size int64) error {
	if !IsExtensionAllowed(filename) {
		return fmt.Errorf("%w: unsupported file extension %q", ErrInvalidUpload, path.Ext(filename))
	}
	if !IsMimeTypeAllowed(mimeType) {
		return fmt.Errorf("%w: unsupported content type %q", ErrInvalidUpload, mimeType)
	}
	if size <= 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, MaxFileSize)
	}
	return nil
}

func (s *imageUploaderSrv) UploadImage(ctx context.Context, in port.UploadImageInput) (*port.UploadImageOutput, error) {
	if err := ValidateUpload(in.Filename, in.MimeType, in.Size); err != nil {
		return nil, err
	}

	id := s.genID()
	key := OriginalKey(in.UserID.String(), id.String(), path.Ext(in.Filename))
	opts := map[string]string{"Content-Type": in.MimeType}
	if err := s.strg.SaveFile(ctx, key, in.Reader, in.Size, opts); err != nil {
		return nil, fmt.Errorf("store original %q: %w", key, err)
	}
	originalURL := s.strg.PublicURL(key)

	view, err := s.creator.CreateJob(ctx, port.CreateJobInput{
		JobID:            id,
		UserID:           in.UserID,
		OriginalURL:      originalURL,
		OriginalFilename: in.Filename,
		FileSize:         in.Size,
		MimeType:         in.MimeType,
	})
	if err != nil {
		if rmErr := s.strg.RemoveFile(ctx, key); rmErr != nil {
			logger.Warnf(ctx, "failed to remove orphan original %q: %v", key, rmErr)
		}
		return nil, err
	}

	return &port.UploadImageOutput{ID: view.ID, OriginalURL: view.OriginalURL, Status: view.Status}, nil
}
