package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/config"
	"github.com/go-sql-driver/mysql"
)

const defaultPingTimeout = 5 * time.Second

// Database is the MariaDB pool shared by the job and user stores.
type Database struct {
	*sql.DB
}

// PoolConfig sizes the pool and shapes the DSN.
type PoolConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	// MultiStatements is only needed to apply migration files.
	MultiStatements bool
}

func PoolConfigFrom(cfg *config.Settings) PoolConfig {
	return PoolConfig{
		DSN:             cfg.MariaDBDSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}

// NormaliseDSN forces parseTime and UTC: job timestamps are scanned straight
// into time.Time and compared against UTC cut-offs.
func NormaliseDSN(dsn string, multiStatements bool) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MariaDB DSN: %w", err)
	}
	c.ParseTime = true
	c.Loc = time.UTC
	if multiStatements {
		c.MultiStatements = true
	}
	return c.FormatDSN(), nil
}

// New opens the pool and fails unless the server answers within PingTimeout.
func New(ctx context.Context, pc PoolConfig) (*Database, error) {
	dsn, err := NormaliseDSN(pc.DSN, pc.MultiStatements)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(pc.MaxOpenConns)
	db.SetMaxIdleConns(pc.MaxIdleConns)
	db.SetConnMaxLifetime(pc.ConnMaxLifetime)

	timeout := pc.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping MariaDB: %w", err)
	}
	return &Database{db}, nil
}
