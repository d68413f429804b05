package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/cache"
	"github.com/HlaKarki/ImageProcessor/internal/config"
	"github.com/HlaKarki/ImageProcessor/internal/db"
	workerHandler "github.com/HlaKarki/ImageProcessor/internal/handler/worker"
	"github.com/HlaKarki/ImageProcessor/internal/imaging"
	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/metrics"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/queue"
	"github.com/HlaKarki/ImageProcessor/internal/repository/mariadb"
	"github.com/HlaKarki/ImageProcessor/internal/storage"
	"github.com/HlaKarki/ImageProcessor/internal/task"
	jobSvc "github.com/HlaKarki/ImageProcessor/internal/usecase/job"
	"github.com/HlaKarki/ImageProcessor/internal/vision"
	"github.com/hibiken/asynq"
)

const drainTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init("image-worker")

	database := initDb(ctx, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Warnf(ctx, "DB close error: %v", err)
		}
	}()

	strg := initStorage(ctx, cfg)

	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		logger.Errorf(ctx, "❌  %v", err)
		os.Exit(1)
	}
	defer qc.Close()
	if err := qc.SetupTopology(); err != nil {
		logger.Errorf(ctx, "❌  Failed to declare queues: %v", err)
		os.Exit(1)
	}

	var ca port.Cache
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
	} else {
		ca = cache.NewNoop()
		logger.Warn(ctx, "⚠️  Redis not configured, caching and scheduled retention are disabled")
	}

	if cfg.OpenAIAPIKey == "" {
		logger.Warn(ctx, "⚠️  OPENAI_API_KEY not set, every AI stage will fail")
	}
	visionClient := vision.NewClient(vision.Options{
		APIKey:          cfg.OpenAIAPIKey,
		Model:           cfg.OpenAIModel,
		BaseURL:         cfg.OpenAIBaseURL,
		MaxDimension:    cfg.AIMaxDimension,
		InputCostPer1K:  cfg.AIInputCostPer1K,
		OutputCostPer1K: cfg.AIOutputCostPer1K,
		HTTPClient:      &http.Client{Timeout: cfg.AITimeout},
	})

	repo := mariadb.NewJobRepository(database.DB)
	processSvc := jobSvc.NewImageProcessor(repo, strg, ca, qc, imaging.NewEngine())
	analyseSvc := jobSvc.NewImageAnalyser(repo, strg, ca, visionClient)
	sweepSvc := jobSvc.NewRetentionSweeper(repo, strg, ca)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(runCtx, cfg.MetricsAddr)

	opts := queue.ConsumeOptions{Concurrency: cfg.WorkerConcurrency, DrainTimeout: drainTimeout}
	var wg sync.WaitGroup
	consume := func(name string, h queue.Handler) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := qc.Consume(runCtx, name, opts, h); err != nil {
				logger.Errorf(ctx, "❌  Consumer %s stopped: %v", name, err)
				// losing one loop silently would strand its queue
				stop()
			}
		}()
	}
	consume(queue.ImageJobsQueue, workerHandler.ImageJobHandler(processSvc))
	consume(queue.AIJobsQueue, workerHandler.AIJobHandler(analyseSvc))
	logger.Infof(ctx, "🚀 Worker consuming %s and %s with concurrency %d", queue.ImageJobsQueue, queue.AIJobsQueue, cfg.WorkerConcurrency)

	var retention *asynq.Server
	var scheduler *asynq.Scheduler
	if cfg.RedisAddr != "" {
		retention, scheduler = runRetention(ctx, cfg, sweepSvc)
	}

	<-runCtx.Done()
	logger.Info(ctx, "🛑 Shutdown signal received, draining in-flight jobs…")

	if scheduler != nil {
		scheduler.Shutdown()
	}
	if retention != nil {
		retention.Shutdown()
	}
	wg.Wait()

	logger.Info(ctx, "✅  Worker gracefully stopped")
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(ctx, db.PoolConfigFrom(cfg))
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
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
	if err := strg.InitBucket(ctx); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.MinioBucket, err)
		os.Exit(1)
	}

	return strg
}

// runRetention starts the asynq server that executes sweeps and the
// scheduler that enqueues one per day.
func runRetention(ctx context.Context, cfg *config.Settings, svc port.RetentionSweeper) (*asynq.Server, *asynq.Scheduler) {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeRetentionSweep, func(ctx context.Context, t *asynq.Task) error {
		return workerHandler.RetentionSweepHandler(ctx, svc)
	})

	srv := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 1})
	if err := srv.Start(mux); err != nil {
		logger.Errorf(ctx, "❌  Retention server failed: %v", err)
		os.Exit(1)
	}

	scheduler, err := task.NewScheduler(redisOpt)
	if err != nil {
		logger.Errorf(ctx, "❌  %v", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Errorf(ctx, "❌  Retention scheduler failed: %v", err)
		os.Exit(1)
	}
	logger.Infof(ctx, "🚀 Retention sweep scheduled %s", task.RetentionSchedule)

	return srv, scheduler
}
