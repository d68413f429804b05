package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/HlaKarki/ImageProcessor/internal/cache"
	"github.com/HlaKarki/ImageProcessor/internal/config"
	"github.com/HlaKarki/ImageProcessor/internal/db"
	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/repository/mariadb"
	"github.com/HlaKarki/ImageProcessor/internal/storage"
	"github.com/HlaKarki/ImageProcessor/internal/task"
	jobSvc "github.com/HlaKarki/ImageProcessor/internal/usecase/job"
)

func main() {
	enqueue := flag.Bool("enqueue", false, "hand the sweep to a running worker instead of sweeping here")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init("image-cleanup")

	if *enqueue {
		enqueueSweep(ctx, cfg)
		return
	}

	database, err := db.New(ctx, db.PoolConfigFrom(cfg))
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	strg, err := storage.NewMinioStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
		cfg.MinioBucket,
		cfg.StorageTimeout,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	var ca port.Cache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
	}

	sweeper := jobSvc.NewRetentionSweeper(mariadb.NewJobRepository(database.DB), strg, ca)
	report, err := sweeper.Sweep(ctx)
	if err != nil {
		logger.Errorf(ctx, "❌  Retention sweep failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("found %d expired jobs, cleaned %d\n", report.Found, report.Cleaned)
	if report.Cleaned < report.Found {
		logger.Warnf(ctx, "⚠️  %d job(s) kept because their blobs could not be removed", report.Found-report.Cleaned)
	}
}

func enqueueSweep(ctx context.Context, cfg *config.Settings) {
	if cfg.RedisAddr == "" {
		logger.Error(ctx, "❌  Redis not configured: -enqueue requires a running Redis instance")
		os.Exit(1)
	}
	dispatcher := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
	defer func() { _ = dispatcher.Close() }()

	id, err := dispatcher.EnqueueRetentionSweep(ctx)
	if err != nil {
		logger.Errorf(ctx, "❌  %v", err)
		os.Exit(1)
	}
	logger.Infof(ctx, "✅  Retention sweep queued as task %s", id)
}
