package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/go-chi/chi/v5/middleware"
)

var std *slog.Logger

// contextHandler appends caller identity pulled from the context: the
// authenticated user (or "system" for background work) and, on HTTP paths,
// the chi request id.
type contextHandler struct{ next slog.Handler }

func (c contextHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return c.next.Enabled(ctx, lvl)
}

func (c contextHandler) Handle(ctx context.Context, r slog.Record) error {
	uid := "system"
	if id, ok := api_context.AuthUserIDFromContext(ctx); ok {
		uid = id.String()
	}
	r.AddAttrs(slog.String("uid", uid))
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String("reqId", reqID))
	}
	return c.next.Handle(ctx, r)
}

func (c contextHandler) WithAttrs(a []slog.Attr) slog.Handler {
	return contextHandler{next: c.next.WithAttrs(a)}
}

func (c contextHandler) WithGroup(n string) slog.Handler {
	return contextHandler{next: c.next.WithGroup(n)}
}

// Options mirror the LOG_* environment variables.
type Options struct {
	Format    string // json|text
	Level     string // debug|info|warn|error
	AddSource bool
}

func optionsFromEnv() Options {
	return Options{
		Format:    strings.ToLower(envOr("LOG_FORMAT", "json")),
		Level:     envOr("LOG_LEVEL", "info"),
		AddSource: parseBool(envOr("LOG_SOURCE", "false")),
	}
}

// New builds a logger writing to w, tagged with svc.
func New(w io.Writer, svc string, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level), AddSource: opts.AddSource}

	var base slog.Handler
	if opts.Format == "text" {
		base = slog.NewTextHandler(w, hopts)
	} else {
		base = slog.NewJSONHandler(w, hopts)
	}
	return slog.New(contextHandler{next: base}).With("svc", svc)
}

// Init installs the process-wide logger for svc (image-api, image-worker, ...)
// from LOG_FORMAT, LOG_LEVEL and LOG_SOURCE.
func Init(svc string) {
	std = New(os.Stdout, svc, optionsFromEnv())
	slog.SetDefault(std)

	// stdlib log output (driver warnings etc.) goes through the same handler
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(std.Handler(), slog.LevelInfo).Writer())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func current() *slog.Logger {
	if std != nil {
		return std
	}
	return slog.Default()
}

func Info(ctx context.Context, msg string, attrs ...any)  { current().InfoContext(ctx, msg, attrs...) }
func Warn(ctx context.Context, msg string, attrs ...any)  { current().WarnContext(ctx, msg, attrs...) }
func Error(ctx context.Context, msg string, attrs ...any) { current().ErrorContext(ctx, msg, attrs...) }
func Debug(ctx context.Context, msg string, attrs ...any) { current().DebugContext(ctx, msg, attrs...) }

func Infof(ctx context.Context, format string, a ...any) {
	current().InfoContext(ctx, fmt.Sprintf(format, a...))
}
func Warnf(ctx context.Context, format string, a ...any) {
	current().WarnContext(ctx, fmt.Sprintf(format, a...))
}
func Errorf(ctx context.Context, format string, a ...any) {
	current().ErrorContext(ctx, fmt.Sprintf(format, a...))
}
func Debugf(ctx context.Context, format string, a ...any) {
	current().DebugContext(ctx, fmt.Sprintf(format, a...))
}
