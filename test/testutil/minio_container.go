package testutil

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ory/dockertest/v3"
)

const (
	MinIORootUser     = "minioadmin"
	MinIORootPassword = "minioadmin"
)

type MinIOContainerInfo struct {
	Endpoint string
	Cleanup  func()
}

func StartMinIOContainer() (*MinIOContainerInfo, error) {
	opts := &dockertest.RunOptions{
		Repository: "minio/minio",
		Tag:        "latest",
		Env: []string{
			"MINIO_ROOT_USER=" + MinIORootUser,
			"MINIO_ROOT_PASSWORD=" + MinIORootPassword,
		},
		Cmd: []string{"server", "/data"},
	}

	c, hostPort, err := startContainer("minio", opts, "9000/tcp", func(hostPort string) error {
		client, err := minio.New("localhost:"+hostPort, &minio.Options{
			Creds: credentials.NewStaticV4(MinIORootUser, MinIORootPassword, ""),
		})
		if err != nil {
			return err
		}
		ctx, cancel := pingContext()
		defer cancel()
		_, err = client.ListBuckets(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &MinIOContainerInfo{Endpoint: "localhost:" + hostPort, Cleanup: c.purge}, nil
}
