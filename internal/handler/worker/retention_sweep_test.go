package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/HlaKarki/ImageProcessor/internal/mock"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

func TestRetentionSweepHandler_Success(t *testing.T) {
	svc := &mock.RetentionSweeper{Out: port.SweepReport{Found: 3, Cleaned: 2}}

	if err := RetentionSweepHandler(context.Background(), svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Called {
		t.Error("service not called")
	}
}

func TestRetentionSweepHandler_ServiceError(t *testing.T) {
	svcErr := errors.New("db down")
	svc := &mock.RetentionSweeper{Err: svcErr}

	if err := RetentionSweepHandler(context.Background(), svc); !errors.Is(err, svcErr) {
		t.Fatalf("got error %v; want %v", err, svcErr)
	}
}
