package middleware

import (
	"net/http"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/handler/api"
	"github.com/go-chi/httprate"
)

// LimitByIP caps each client address at perMinute requests per minute.
func LimitByIP(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			api.WriteError(w, http.StatusTooManyRequests, "too many requests", nil)
		}),
	)
}
