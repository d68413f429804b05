package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb}
}

// Ping checks the connection so callers can fall back to NoopCache.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) GetJobDetails(ctx context.Context, userID, jobID uuid.UUID) ([]byte, error) {
	logger.Debugf(ctx, "getting entry in cache for job #%s...", jobID)
	return c.get(ctx, detailsKey(userID, jobID))
}

func (c *Cache) SetJobDetails(ctx context.Context, userID, jobID uuid.UUID, data []byte, ttl time.Duration) {
	logger.Debugf(ctx, "creating entry in cache for job #%s, ttl %s...", jobID, ttl)

	if err := c.client.Set(ctx, detailsKey(userID, jobID), data, ttl).Err(); err != nil {
		logger.Warnf(ctx, "redis set failed for job #%s: %v", jobID, err)
	}
}

func (c *Cache) DeleteJobDetails(ctx context.Context, userID, jobID uuid.UUID) error {
	logger.Debugf(ctx, "deleting entry in cache for job #%s...", jobID)

	if err := c.client.Del(ctx, detailsKey(userID, jobID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) JobListVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, listVersionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

func (c *Cache) GetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int) ([]byte, error) {
	logger.Debugf(ctx, "getting list page %d/%d (v%d) in cache for user #%s...", page, pageSize, version, userID)
	return c.get(ctx, listKey(userID, version, page, pageSize))
}

func (c *Cache) SetJobList(ctx context.Context, userID uuid.UUID, version int64, page, pageSize int, data []byte, ttl time.Duration) {
	logger.Debugf(ctx, "creating list page %d/%d (v%d) in cache for user #%s, ttl %s...", page, pageSize, version, userID, ttl)

	key := listKey(userID, version, page, pageSize)
	tag := listTagKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		pipe.SAdd(ctx, tag, key)
		pipe.Expire(ctx, tag, ttl)
		return nil
	})
	if err != nil {
		logger.Warnf(ctx, "redis set failed for list of user #%s: %v", userID, err)
	}
}

// InvalidateJobLists bumps the version before dropping pages. The version key
// never expires, so pages stored under an older version stay unreachable.
func (c *Cache) InvalidateJobLists(ctx context.Context, userID uuid.UUID) error {
	logger.Debugf(ctx, "invalidating list pages in cache for user #%s...", userID)

	if err := c.client.Incr(ctx, listVersionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}

	tag := listTagKey(userID)
	keys, err := c.client.SMembers(ctx, tag).Result()
	if err != nil {
		return fmt.Errorf("redis smembers failed: %w", err)
	}
	if err := c.client.Del(ctx, append(keys, tag)...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func detailsKey(userID, jobID uuid.UUID) string {
	return "job:" + userID.String() + ":" + jobID.String()
}

func listKey(userID uuid.UUID, version int64, page, pageSize int) string {
	return "jobs:" + userID.String() + ":v" + strconv.FormatInt(version, 10) + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(pageSize)
}

func listVersionKey(userID uuid.UUID) string {
	return "jobs:version:" + userID.String()
}

func listTagKey(userID uuid.UUID) string {
	return "jobs:tag:" + userID.String()
}
