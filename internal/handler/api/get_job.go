package api

import (
	"errors"
	"net/http"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
)

func GetJobHandler(svc port.JobGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}
		userID, ok := api_context.AuthUserIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		view, err := svc.GetJob(r.Context(), id, userID)
		if err != nil {
			if errors.Is(err, job.ErrJobNotFound) {
				WriteError(w, http.StatusNotFound, "Job not found", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not get job details", err)
			return
		}

		// signed URLs inside must not outlive their TTL in a shared cache
		w.Header().Set("Cache-Control", "private, no-store")
		RespondJSON(w, http.StatusOK, view)
		logger.Debugf(r.Context(), "✅  Successfully returned details for job #%s", id)
	}
}
