package middleware

import (
	"net/http"
	"strings"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/HlaKarki/ImageProcessor/internal/handler/api"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	Verify(raw string) (uuid.UUID, error)
}

// WithAuth requires a valid Bearer JWT and stores its subject in the context.
func WithAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				api.WriteError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}

			userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(api_context.WithAuthUserID(r.Context(), userID)))
		})
	}
}
