package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// readyTimeout bounds how long a fresh container may take to accept connections.
const readyTimeout = 2 * time.Minute

// container is one disposable dependency started for a test binary.
type container struct {
	name     string
	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// startContainer runs opts and polls ready(hostPort) until it succeeds.
// The container is purged when it never becomes ready.
func startContainer(name string, opts *dockertest.RunOptions, port string, ready func(hostPort string) error) (*container, string, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, "", fmt.Errorf("could not connect to docker: %w", err)
	}
	pool.MaxWait = readyTimeout

	resource, err := pool.RunWithOptions(opts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, "", fmt.Errorf("could not start %s container: %w", name, err)
	}

	hostPort := resource.GetPort(port)
	if err := pool.Retry(func() error { return ready(hostPort) }); err != nil {
		_ = pool.Purge(resource)
		return nil, "", fmt.Errorf("%s did not become ready: %w", name, err)
	}

	return &container{name: name, pool: pool, resource: resource}, hostPort, nil
}

func (c *container) purge() {
	if err := c.pool.Purge(c.resource); err != nil {
		logger.Warnf(context.Background(), "could not purge %s container: %s", c.name, err)
	}
}

// pingContext is the per-attempt deadline used by readiness checks.
func pingContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}
