package testutil

import (
	"fmt"
	"os"
)

// Dependency names one external service a suite needs and how to start it
// when the environment does not already point at one.
type Dependency struct {
	EnvKey string
	Start  func() (value string, cleanup func(), err error)
}

func MariaDB() Dependency {
	return Dependency{EnvKey: "TEST_DB_DSN", Start: func() (string, func(), error) {
		c, err := StartMariaDBContainer()
		if err != nil {
			return "", nil, err
		}
		return c.DSN, c.Cleanup, nil
	}}
}

func MinIO() Dependency {
	return Dependency{EnvKey: "TEST_MINIO_ENDPOINT", Start: func() (string, func(), error) {
		c, err := StartMinIOContainer()
		if err != nil {
			return "", nil, err
		}
		return c.Endpoint, c.Cleanup, nil
	}}
}

func Redis() Dependency {
	return Dependency{EnvKey: "TEST_REDIS_ADDR", Start: func() (string, func(), error) {
		c, err := StartRedisContainer()
		if err != nil {
			return "", nil, err
		}
		return c.Addr, c.Cleanup, nil
	}}
}

func RabbitMQ() Dependency {
	return Dependency{EnvKey: "TEST_RABBITMQ_URL", Start: func() (string, func(), error) {
		c, err := StartRabbitMQContainer()
		if err != nil {
			return "", nil, err
		}
		return c.URL, c.Cleanup, nil
	}}
}

// RunWith starts every dependency whose env var is unset (CI may provide
// them), runs the suite and tears the started containers down again.
func RunWith(run func() int, deps ...Dependency) int {
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	for _, d := range deps {
		if os.Getenv(d.EnvKey) != "" {
			continue
		}
		value, cleanup, err := d.Start()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s setup failed: %v\n", d.EnvKey, err)
			return 1
		}
		cleanups = append(cleanups, cleanup)
		if err := os.Setenv(d.EnvKey, value); err != nil {
			fmt.Fprintf(os.Stderr, "could not set %s: %v\n", d.EnvKey, err)
			return 1
		}
	}

	return run()
}
