package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/migration"
	"github.com/go-sql-driver/mysql"
)

type TestDB struct {
	DB      *sql.DB
	Cleanup func() error
}

// SetupTestDB creates a throwaway database next to TEST_DB_DSN and applies
// every migration to it.
func SetupTestDB() (*TestDB, error) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("TEST_DB_DSN env-var not set")
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN %q: %w", dsn, err)
	}

	origName := cfg.DBName
	cfg.DBName = ""
	rootDB, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open root DB: %w", err)
	}

	dbName := fmt.Sprintf("%s_%d", origName, time.Now().UnixNano())
	if _, err := rootDB.Exec("CREATE DATABASE " + dbName); err != nil {
		_ = rootDB.Close()
		return nil, err
	}
	drop := func() error {
		defer func() { _ = rootDB.Close() }()
		if _, err := rootDB.Exec("DROP DATABASE " + dbName); err != nil {
			return fmt.Errorf("drop database %q: %w", dbName, err)
		}
		return nil
	}

	cfg.DBName = dbName
	cfg.ParseTime = true
	cfg.MultiStatements = true
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		_ = drop()
		return nil, fmt.Errorf("open test DB %q: %w", dbName, err)
	}

	if err := migration.MigrateUp(db); err != nil {
		_ = db.Close()
		_ = drop()
		return nil, fmt.Errorf("migrate test DB %q: %w", dbName, err)
	}

	cleanup := func() error {
		if err := db.Close(); err != nil {
			return err
		}
		return drop()
	}

	return &TestDB{DB: db, Cleanup: cleanup}, nil
}
