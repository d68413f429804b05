package port

import (
	"context"
	"io"
	"time"
)

// Storage defines object storage operations on the images bucket.
type Storage interface {
	InitBucket(ctx context.Context) error
	GetFile(ctx context.Context, fileKey string) (io.ReadCloser, error)
	SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error
	RemoveFile(ctx context.Context, fileKey string) error
	// RemovePrefix deletes every object whose key starts with prefix.
	RemovePrefix(ctx context.Context, prefix string) error
	GeneratePresignedDownloadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error)
	// PublicURL returns the unsigned URL stored on jobs for fileKey.
	PublicURL(fileKey string) string
	// KeyFromURL is the inverse of PublicURL.
	KeyFromURL(rawURL string) (string, error)
}
