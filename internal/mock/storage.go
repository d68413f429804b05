package mock

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

const storageBaseURL = "http://minio:9000/images/"

// Storage is an in-memory port.Storage.
type Storage struct {
	mu    sync.Mutex
	Files map[string][]byte

	// captured inputs
	ContentTypes    map[string]string
	RemovedKeys     []string
	RemovedPrefixes []string
	TTL             time.Duration

	// errors
	InitBucketErr   error
	GetErr          error
	SaveErr         error
	RemoveErr       error
	RemovePrefixErr error
	PresignErr      error
	// SaveErrOn fails SaveFile only for keys containing the substring.
	SaveErrOn string

	InitBucketCalled bool
	SaveCalls        int
	PresignCalls     int
}

func NewStorage() *Storage {
	return &Storage{Files: make(map[string][]byte), ContentTypes: make(map[string]string)}
}

func (s *Storage) InitBucket(ctx context.Context) error {
	s.InitBucketCalled = true
	return s.InitBucketErr
}

func (s *Storage) GetFile(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	data, ok := s.Files[fileKey]
	if !ok {
		return nil, errors.New("object not found: " + fileKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Storage) SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCalls++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.SaveErrOn != "" && strings.Contains(fileKey, s.SaveErrOn) {
		return errors.New("save failed for " + fileKey)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.Files[fileKey] = data
	s.ContentTypes[fileKey] = opts["Content-Type"]
	return nil
}

func (s *Storage) RemoveFile(ctx context.Context, fileKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RemovedKeys = append(s.RemovedKeys, fileKey)
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	delete(s.Files, fileKey)
	return nil
}

func (s *Storage) RemovePrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RemovedPrefixes = append(s.RemovedPrefixes, prefix)
	if s.RemovePrefixErr != nil {
		return s.RemovePrefixErr
	}
	for k := range s.Files {
		if strings.HasPrefix(k, prefix) {
			delete(s.Files, k)
		}
	}
	return nil
}

func (s *Storage) GeneratePresignedDownloadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PresignCalls++
	s.TTL = expiry
	if s.PresignErr != nil {
		return "", s.PresignErr
	}
	return storageBaseURL + fileKey + "?X-Amz-Signature=signed", nil
}

func (s *Storage) PublicURL(fileKey string) string {
	return storageBaseURL + fileKey
}

func (s *Storage) KeyFromURL(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, storageBaseURL) {
		return "", errors.New("url outside bucket: " + rawURL)
	}
	return strings.TrimPrefix(rawURL, storageBaseURL), nil
}

// Keys returns the stored object keys in lexical order.
func (s *Storage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.Files))
	for k := range s.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
