package testutil

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
)

const mariaDBRootPassword = "root"

type MariaDBContainerInfo struct {
	// DSN points at the server's "mysql" schema; SetupTestDB derives
	// per-test databases from it.
	DSN     string
	Cleanup func()
}

func StartMariaDBContainer() (*MariaDBContainerInfo, error) {
	opts := &dockertest.RunOptions{
		Repository: "mariadb",
		Tag:        "10.11",
		Env:        []string{"MARIADB_ROOT_PASSWORD=" + mariaDBRootPassword},
	}

	var dsn string
	c, _, err := startContainer("mariadb", opts, "3306/tcp", func(hostPort string) error {
		dsn = fmt.Sprintf("root:%s@(localhost:%s)/mysql?parseTime=true", mariaDBRootPassword, hostPort)
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		ctx, cancel := pingContext()
		defer cancel()
		return db.PingContext(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &MariaDBContainerInfo{DSN: dsn, Cleanup: c.purge}, nil
}
