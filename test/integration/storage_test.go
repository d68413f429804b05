package integration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
	"github.com/HlaKarki/ImageProcessor/test/testutil"
)

func TestMinioStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	strg := testutil.SetupTestStorage(t)
	data := testutil.GeneratePNG(t, 32, 32)

	keys := []string{
		"originals/u1/j1.png",
		"processed/u1/j1/thumb-128.webp",
		"processed/u1/j1/optimized.webp",
		"processed/u1/j2/thumb-128.webp",
	}
	for _, k := range keys {
		if err := strg.SaveFile(ctx, k, bytes.NewReader(data), int64(len(data)), map[string]string{"Content-Type": "image/png"}); err != nil {
			t.Fatalf("SaveFile %q: %v", k, err)
		}
	}

	url := strg.PublicURL(keys[0])
	key, err := strg.KeyFromURL(url)
	if err != nil || key != keys[0] {
		t.Fatalf("KeyFromURL(%q) = %q, %v", url, key, err)
	}

	rc, err := strg.GetFile(ctx, keys[0])
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	got, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || !bytes.Equal(got, data) {
		t.Fatalf("downloaded %d bytes (err %v); want %d", len(got), err, len(data))
	}

	signed, err := strg.GeneratePresignedDownloadURL(ctx, keys[0], time.Minute)
	if err != nil {
		t.Fatalf("GeneratePresignedDownloadURL: %v", err)
	}
	resp, err := http.Get(signed)
	if err != nil {
		t.Fatalf("GET signed url: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signed url status = %d; want 200", resp.StatusCode)
	}

	if err := strg.RemovePrefix(ctx, "processed/u1/j1/"); err != nil {
		t.Fatalf("RemovePrefix: %v", err)
	}
	if _, err := strg.GetFile(ctx, keys[1]); !errors.Is(err, job.ErrObjectNotFound) {
		t.Errorf("removed object err = %v; want %v", err, job.ErrObjectNotFound)
	}
	rc, err = strg.GetFile(ctx, keys[3])
	if err != nil {
		t.Fatalf("sibling prefix was removed too: %v", err)
	}
	_ = rc.Close()
}
