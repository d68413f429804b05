package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/HlaKarki/ImageProcessor/internal/handler/api"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
	"github.com/go-chi/chi/v5"
)

const JobIDParam = "jobId"

func WithJobID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, JobIDParam)
			if id == "" {
				api.WriteError(w, http.StatusBadRequest, "ID is required", nil)
				return
			}
			// no job can carry a malformed ID, so it reads the same as an unknown one
			parsedID, err := uuid.Parse(id)
			if err != nil {
				api.WriteError(w, http.StatusNotFound, "Job not found", fmt.Errorf("parse job ID %q: %w", id, err))
				return
			}

			// stash it in context and call the real handler
			ctx := context.WithValue(r.Context(), api_context.IDKey, parsedID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
