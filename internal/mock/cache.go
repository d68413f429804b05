package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// Cache is an in-memory port.Cache. Misses return (nil, nil) like the redis one.
type Cache struct {
	mu       sync.Mutex
	Details  map[string][]byte
	Lists    map[string][]byte
	Versions map[uuid.UUID]int64 // list generation per user

	// errors
	GetErr        error
	VersionErr    error
	DeleteErr     error
	InvalidateErr error

	// captured inputs
	DetailsTTL       time.Duration
	ListTTL          time.Duration
	DeletedDetails   []uuid.UUID
	InvalidatedUsers []uuid.UUID
	SetDetailsCalls  int
	SetListCalls     int
}

func NewCache() *Cache {
	return &Cache{
		Details:  make(map[string][]byte),
		Lists:    make(map[string][]byte),
		Versions: make(map[uuid.UUID]int64),
	}
}

func detailsKey(userID, jobID uuid.UUID) string {
	return userID.String() + ":" + jobID.String()
}

func listKey(userID uuid.UUID, version int64, page, pageSize int) string {
	return fmt.Sprintf("%s:v%d:%d:%d", userID, version, page, pageSize)
}

func (c *Cache) GetJobDetails(ctx context.Context, userID, jobID uuid.UUID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	return c.Details[detailsKey(userID, jobID)], nil
}

func (c *Cache) SetJobDetails(ctx context.Context, userID, jobID uuid.UUID, data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetDetailsCalls++
	c.DetailsTTL = ttl
	c.Details[detailsKey(userID, jobID)] = data
}

func (c *Cache) DeleteJobDetails(ctx context.Context, userID, jobID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DeletedDetails = append(c.DeletedDetails, jobID)
	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	delete(c.Details, detailsKey(userID, jobID))
	return nil
}

func (c *Cache) JobListVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.VersionErr != nil {
		return 0, c.VersionErr
	}
	return c.Versions[userID], nil
}

func (c *Cache) GetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetErr != nil {
		return nil, c.GetErr
	}
	return c.Lists[listKey(userID, version, page, pageSize)], nil
}

func (c *Cache) SetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int, data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetListCalls++
	c.ListTTL = ttl
	c.Lists[listKey(userID, version, page, pageSize)] = data
}

func (c *Cache) InvalidateJobLists(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InvalidatedUsers = append(c.InvalidatedUsers, userID)
	if c.InvalidateErr != nil {
		return c.InvalidateErr
	}
	c.Versions[userID]++
	prefix := userID.String() + ":"
	for k := range c.Lists {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(c.Lists, k)
		}
	}
	return nil
}
