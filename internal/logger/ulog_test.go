package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
	"github.com/go-chi/chi/v5/middleware"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not a JSON record: %q: %v", buf.String(), err)
	}
	return rec
}

func TestNew_BackgroundRecordIsSystem(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "image-worker", Options{Format: "json", Level: "info"})

	l.InfoContext(context.Background(), "image stage started", "jobId", "j-1")

	rec := decodeLine(t, &buf)
	if rec["svc"] != "image-worker" {
		t.Errorf("svc = %v; want image-worker", rec["svc"])
	}
	if rec["uid"] != "system" {
		t.Errorf("uid = %v; want system", rec["uid"])
	}
	if rec["jobId"] != "j-1" {
		t.Errorf("jobId = %v; want j-1", rec["jobId"])
	}
	if _, ok := rec["reqId"]; ok {
		t.Error("reqId should be absent outside HTTP requests")
	}
}

func TestNew_RequestRecordCarriesUserAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "image-api", Options{Format: "json", Level: "info"})

	user := uuid.NewUUID()
	ctx := api_context.WithAuthUserID(context.Background(), user)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "host/abc-000001")

	l.WarnContext(ctx, "upload rejected")

	rec := decodeLine(t, &buf)
	if rec["uid"] != user.String() {
		t.Errorf("uid = %v; want %s", rec["uid"], user)
	}
	if rec["reqId"] != "host/abc-000001" {
		t.Errorf("reqId = %v", rec["reqId"])
	}
}

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "image-api", Options{Format: "text", Level: "warn"})

	l.InfoContext(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %q", buf.String())
	}

	l.ErrorContext(context.Background(), "kept")
	out := buf.String()
	if !strings.Contains(out, "msg=kept") || !strings.Contains(out, "svc=image-api") {
		t.Errorf("unexpected text record: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"WARNING": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		if got := parseLevel(in).Level().String(); got != want {
			t.Errorf("parseLevel(%q) = %s; want %s", in, got, want)
		}
	}
}
