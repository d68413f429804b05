package main

import (
	"context"
	"flag"
	"os"

	"github.com/HlaKarki/ImageProcessor/internal/config"
	"github.com/HlaKarki/ImageProcessor/internal/db"
	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/migration"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying pending ones")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init("image-migrate")

	database, err := initDb(ctx, cfg)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	if *down > 0 {
		if err := migration.MigrateDown(database.DB, *down); err != nil {
			logger.Errorf(ctx, "❌  Migration down failed: %v", err)
			os.Exit(1)
		}
		logger.Infof(ctx, "✅  Rolled back %d migration(s)", *down)
		return
	}

	if err := migration.MigrateUp(database.DB); err != nil {
		logger.Errorf(ctx, "❌  Migration up failed: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "✅  Migrations applied successfully")
}

func initDb(ctx context.Context, cfg *config.Settings) (*db.Database, error) {
	pc := db.PoolConfigFrom(cfg)
	pc.MultiStatements = true
	return db.New(ctx, pc)
}
