package testutil

import (
	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
)

type RedisContainerInfo struct {
	Addr    string
	Cleanup func()
}

// StartRedisContainer backs the job cache in end-to-end runs.
func StartRedisContainer() (*RedisContainerInfo, error) {
	opts := &dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"}

	c, hostPort, err := startContainer("redis", opts, "6379/tcp", func(hostPort string) error {
		rdb := redis.NewClient(&redis.Options{Addr: "localhost:" + hostPort})
		defer func() { _ = rdb.Close() }()
		ctx, cancel := pingContext()
		defer cancel()
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		return nil, err
	}

	return &RedisContainerInfo{Addr: "localhost:" + hostPort, Cleanup: c.purge}, nil
}
