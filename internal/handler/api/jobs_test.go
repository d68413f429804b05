package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/HlaKarki/ImageProcessor/internal/mock"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

func TestGetJobHandler(t *testing.T) {
	userID := uuid.NewUUID()
	jobID := uuid.NewUUID()

	tests := []struct {
		name       string
		withID     bool
		withUser   bool
		svcErr     error
		wantStatus int
	}{
		{"missing id", false, true, nil, http.StatusBadRequest},
		{"unauthenticated", true, false, nil, http.StatusUnauthorized},
		{"not found", true, true, job.ErrJobNotFound, http.StatusNotFound},
		{"internal error", true, true, errors.New("db down"), http.StatusInternalServerError},
		{"happy path", true, true, nil, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mock.JobGetter{
				Out: &port.JobView{ID: jobID, UserID: userID, Status: model.JobStatusCompleted},
				Err: tc.svcErr,
			}
			req := httptest.NewRequest(http.MethodGet, "/api/images/"+jobID.String(), nil)
			ctx := req.Context()
			if tc.withID {
				ctx = context.WithValue(ctx, api_context.IDKey, jobID)
			}
			if tc.withUser {
				ctx = api_context.WithAuthUserID(ctx, userID)
			}
			rec := httptest.NewRecorder()

			GetJobHandler(svc)(rec, req.WithContext(ctx))

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus != http.StatusOK {
				return
			}
			if svc.JobID != jobID || svc.UserID != userID {
				t.Errorf("service got job %s user %s", svc.JobID, svc.UserID)
			}
			if got := rec.Header().Get("Cache-Control"); got != "private, no-store" {
				t.Errorf("Cache-Control = %q", got)
			}
			var view port.JobView
			if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if view.ID != jobID || view.Status != model.JobStatusCompleted {
				t.Errorf("unexpected view %+v", view)
			}
		})
	}
}

func TestListJobsHandler(t *testing.T) {
	userID := uuid.NewUUID()

	tests := []struct {
		name         string
		query        string
		svcErr       error
		wantStatus   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", nil, http.StatusOK, 0, 0},
		{"explicit", "?page=3&pageSize=50", nil, http.StatusOK, 3, 50},
		{"non numeric page", "?page=abc", nil, http.StatusBadRequest, 0, 0},
		{"zero page size", "?pageSize=0", nil, http.StatusBadRequest, 0, 0},
		{"negative page", "?page=-1", nil, http.StatusBadRequest, 0, 0},
		{"use case rejects", "?pageSize=500", job.ErrInvalidPage, http.StatusBadRequest, 0, 500},
		{"internal error", "", errors.New("db down"), http.StatusInternalServerError, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mock.JobLister{
				Out: &port.JobPage{Items: []port.JobView{}, Page: 1, PageSize: 20},
				Err: tc.svcErr,
			}
			req := withUser(httptest.NewRequest(http.MethodGet, "/api/images"+tc.query, nil), userID)
			rec := httptest.NewRecorder()

			ListJobsHandler(svc)(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if !svc.Called {
				return
			}
			if svc.In.UserID != userID {
				t.Errorf("UserID = %s; want %s", svc.In.UserID, userID)
			}
			if svc.In.PageSize != tc.wantPageSize {
				t.Errorf("PageSize = %d; want %d", svc.In.PageSize, tc.wantPageSize)
			}
			if svc.In.Page != tc.wantPage {
				t.Errorf("Page = %d; want %d", svc.In.Page, tc.wantPage)
			}
		})
	}
}

func TestListJobsHandler_Unauthenticated(t *testing.T) {
	svc := &mock.JobLister{}
	rec := httptest.NewRecorder()

	ListJobsHandler(svc)(rec, httptest.NewRequest(http.MethodGet, "/api/images", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rec.Code)
	}
	if svc.Called {
		t.Fatal("service should not be called")
	}
}
