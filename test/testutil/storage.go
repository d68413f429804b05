package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/storage"
)

// SetupTestStorage returns a MinioStorage bound to a fresh bucket on
// TEST_MINIO_ENDPOINT. The bucket is emptied when the test ends.
func SetupTestStorage(t *testing.T) *storage.MinioStorage {
	t.Helper()

	endpoint := os.Getenv("TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Fatal("TEST_MINIO_ENDPOINT env-var not set")
	}

	bucket := fmt.Sprintf("images-%d", time.Now().UnixNano())
	strg, err := storage.NewMinioStorage(endpoint, MinIORootUser, MinIORootPassword, false, bucket, 10*time.Second)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	if err := strg.InitBucket(context.Background()); err != nil {
		t.Fatalf("init bucket %q: %v", bucket, err)
	}

	t.Cleanup(func() {
		if err := strg.RemovePrefix(context.Background(), ""); err != nil {
			t.Logf("could not empty bucket %q: %v", bucket, err)
		}
	})
	return strg
}
