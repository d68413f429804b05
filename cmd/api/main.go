package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/cache"
	"github.com/HlaKarki/ImageProcessor/internal/config"
	"github.com/HlaKarki/ImageProcessor/internal/db"
	"github.com/HlaKarki/ImageProcessor/internal/handler/api"
	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/metrics"
	cMiddleware "github.com/HlaKarki/ImageProcessor/internal/middleware"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/queue"
	"github.com/HlaKarki/ImageProcessor/internal/repository/mariadb"
	"github.com/HlaKarki/ImageProcessor/internal/storage"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/auth"
	jobSvc "github.com/HlaKarki/ImageProcessor/internal/usecase/job"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init("image-api")

	database := initDb(ctx, cfg)
	strg := initStorage(ctx, cfg)
	qc := initQueue(ctx, cfg)
	defer qc.Close()

	checks := map[string]api.HealthCheck{
		"mariadb":  database.PingContext,
		"rabbitmq": qc.Ping,
	}

	var ca port.Cache
	if cfg.RedisAddr != "" {
		rc := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		defer func() { _ = rc.Close() }()
		ca = rc
		checks["redis"] = rc.Ping
		logger.Info(ctx, "✅  Redis cache enabled")
	} else {
		ca = cache.NewNoop()
		logger.Warn(ctx, "⚠️  Redis not configured, caching is disabled")
	}

	jobRepo := mariadb.NewJobRepository(database.DB)
	userRepo := mariadb.NewUserRepository(database.DB)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)

	creatorSvc := jobSvc.NewJobCreator(jobRepo, ca, qc)
	uploaderSvc := jobSvc.NewImageUploader(strg, creatorSvc, uuid.NewUUID)
	getterSvc := jobSvc.NewJobGetter(jobRepo, ca, strg, cfg.SignedURLTTL)
	listerSvc := jobSvc.NewJobLister(jobRepo, ca, strg, cfg.SignedURLTTL)
	authSvc := auth.NewAuthenticator(userRepo, tokens, uuid.NewUUID)

	r := initRouter(ctx)
	r.Get("/health", api.HealthHandler(checks))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(cMiddleware.LimitByIP(cfg.AuthRateLimitPerMinute))
		r.Post("/register", api.RegisterHandler(authSvc))
		r.Post("/login", api.LoginHandler(authSvc))
	})

	r.Route("/api/images", func(r chi.Router) {
		r.Use(cMiddleware.WithAuth(tokens))
		r.Post("/upload", api.UploadImageHandler(uploaderSvc))
		r.Get("/", api.ListJobsHandler(listerSvc))
		r.With(cMiddleware.WithJobID()).
			Get("/{"+cMiddleware.JobIDParam+"}", api.GetJobHandler(getterSvc))
	})

	listenRouter(ctx, r, cfg, database)
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

func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
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

func initQueue(ctx context.Context, cfg *config.Settings) *queue.Client {
	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		logger.Errorf(ctx, "❌  %v", err)
		os.Exit(1)
	}
	if err := qc.SetupTopology(); err != nil {
		logger.Errorf(ctx, "❌  Failed to declare queues: %v", err)
		os.Exit(1)
	}
	return qc
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
