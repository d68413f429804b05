package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
)

func ListJobsHandler(svc port.JobLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := api_context.AuthUserIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		page, err := positiveQueryInt(r, "page")
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		pageSize, err := positiveQueryInt(r, "pageSize")
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		out, err := svc.ListJobs(r.Context(), port.ListJobsInput{UserID: userID, Page: page, PageSize: pageSize})
		if err != nil {
			if errors.Is(err, job.ErrInvalidPage) {
				WriteError(w, http.StatusBadRequest, err.Error(), nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not list jobs", err)
			return
		}

		w.Header().Set("Cache-Control", "private, no-store")
		RespondJSON(w, http.StatusOK, out)
	}
}

// positiveQueryInt returns 0 when the parameter is absent.
func positiveQueryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}
