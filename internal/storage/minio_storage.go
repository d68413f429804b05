package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultTimeout = 45 * time.Second

type MinioStorage struct {
	client     minioClient
	bucketName string
	baseURL    string
	timeout    time.Duration
}

// compile-time check: *MinioStorage must satisfy port.Storage
var _ port.Storage = (*MinioStorage)(nil)

// NewMinioStorage connects to the MinIO endpoint. Every call runs under timeout.
func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, bucket string, timeout time.Duration) (*MinioStorage, error) {
	logger.Info(context.Background(), "initialising minio client", "endpoint", endpoint, "bucket", bucket)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return newMinioStorage(client, endpoint, useSSL, bucket, timeout), nil
}

func newMinioStorage(client minioClient, endpoint string, useSSL bool, bucket string, timeout time.Duration) *MinioStorage {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MinioStorage{
		client:     client,
		bucketName: bucket,
		baseURL:    scheme + "://" + strings.TrimSuffix(endpoint, "/"),
		timeout:    timeout,
	}
}

func (s *MinioStorage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MinioStorage) InitBucket(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return mapMinioErr(err)
	}
	if !ok {
		logger.Infof(ctx, "bucket %q does not exist, creating it...", s.bucketName)
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return mapMinioErr(err)
		}
	}
	return nil
}

func (s *MinioStorage) GeneratePresignedDownloadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	logger.Debugf(ctx, "generating a presigned download link for file %q in bucket %q...", fileKey, s.bucketName)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucketName, fileKey, expiry, url.Values{})
	if err != nil {
		return "", mapMinioErr(err)
	}
	return presignedURL.String(), nil
}

func (s *MinioStorage) RemoveFile(ctx context.Context, fileKey string) error {
	logger.Debugf(ctx, "removing file %q from bucket %q...", fileKey, s.bucketName)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return mapMinioErr(s.client.RemoveObject(ctx, s.bucketName, fileKey, minio.RemoveObjectOptions{}))
}

func (s *MinioStorage) RemovePrefix(ctx context.Context, prefix string) error {
	logger.Debugf(ctx, "removing files under %q from bucket %q...", prefix, s.bucketName)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	objects := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	for obj := range objects {
		if obj.Err != nil {
			return fmt.Errorf("listing %q: %w", prefix, mapMinioErr(obj.Err))
		}
		if err := s.client.RemoveObject(ctx, s.bucketName, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("removing %q: %w", obj.Key, mapMinioErr(err))
		}
	}
	return nil
}

func (s *MinioStorage) GetFile(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	logger.Debugf(ctx, "getting file %q from bucket %q...", fileKey, s.bucketName)

	ctx, cancel := s.withTimeout(ctx)
	obj, err := s.client.GetObject(ctx, s.bucketName, fileKey, minio.GetObjectOptions{})
	if err != nil {
		cancel()
		return nil, mapMinioErr(err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		cancel()
		return nil, mapMinioErr(err)
	}
	return &cancelOnClose{ReadCloser: obj, cancel: cancel}, nil
}

func (s *MinioStorage) SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	logger.Debugf(ctx, "saving file %q into bucket %q...", fileKey, s.bucketName)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	putOpts := minio.PutObjectOptions{}
	if ct := opts["Content-Type"]; ct != "" {
		putOpts.ContentType = ct
	}

	if _, err := s.client.PutObject(ctx, s.bucketName, fileKey, reader, fileSize, putOpts); err != nil {
		return mapMinioErr(err)
	}
	return nil
}

func (s *MinioStorage) PublicURL(fileKey string) string {
	return s.baseURL + "/" + s.bucketName + "/" + strings.TrimPrefix(fileKey, "/")
}

func (s *MinioStorage) KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	key, ok := strings.CutPrefix(u.Path, "/"+s.bucketName+"/")
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %q", ErrForeignURL, rawURL)
	}
	return key, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
