package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StageImage = "image"
	StageAI    = "ai"

	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"

	QueueImageJobs = "image-jobs"
	QueueAIJobs    = "ai-jobs"
)

var (
	JobsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "image_jobs_created_total",
		Help: "The total number of created image jobs",
	})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_jobs_processed_total",
		Help: "The total number of processed job stages",
	}, []string{"stage", "outcome"}) // outcome: completed, failed, skipped

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "image_job_duration_seconds",
		Help:    "Duration of a job stage, from Processing to a terminal state.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"stage"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_queue_publish_failures_total",
		Help: "Messages that could not be published after their job row was committed",
	}, []string{"queue"})

	RetentionJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_retention_jobs_total",
		Help: "Jobs handled by the retention sweep",
	}, []string{"result"}) // result: cleaned, failed
)

// ObserveStage records the outcome of a stage that started at started.
func ObserveStage(stage, outcome string, started time.Time) {
	JobsProcessed.WithLabelValues(stage, outcome).Inc()
	JobDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer exposes /metrics on addr until ctx is done.
func StartServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
