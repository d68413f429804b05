package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/mock"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type failingPrefixStorage struct {
	*mock.Storage
	failFor string
}

func (s failingPrefixStorage) RemovePrefix(ctx context.Context, prefix string) error {
	if prefix == s.failFor {
		return errors.New("access denied")
	}
	return s.Storage.RemovePrefix(ctx, prefix)
}

func TestSweep_RemovesExpiredJobsAndBlobs(t *testing.T) {
	now := time.Date(2025, 6, 30, 3, 0, 0, 0, time.UTC)
	strg := mock.NewStorage()
	userID := uuid.NewUUID()

	old := &model.Job{ID: uuid.NewUUID(), UserID: userID, CreatedAt: now.Add(-31 * 24 * time.Hour)}
	fresh := &model.Job{ID: uuid.NewUUID(), UserID: userID, CreatedAt: now.Add(-29 * 24 * time.Hour)}
	u, o := userID.String(), old.ID.String()
	strg.Files[OriginalKey(u, o, ".png")] = []byte("x")
	strg.Files[ProcessedKey(u, o, "thumb-128", "webp")] = []byte("x")
	strg.Files[OriginalKey(u, fresh.ID.String(), ".png")] = []byte("x")

	repo := mock.NewJobRepo(old, fresh)
	cache := mock.NewCache()
	svc := NewRetentionSweeper(repo, strg, cache).(*retentionSweeperSrv)
	svc.now = func() time.Time { return now }

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Found != 1 || report.Cleaned != 1 {
		t.Errorf("report = %+v; want 1/1", report)
	}
	if repo.Get(old.ID) != nil {
		t.Error("expired job should be deleted")
	}
	if repo.Get(fresh.ID) == nil {
		t.Error("fresh job must be kept")
	}
	if keys := strg.Keys(); len(keys) != 1 || keys[0] != OriginalKey(u, fresh.ID.String(), ".png") {
		t.Errorf("remaining blobs = %v", keys)
	}
	if len(cache.InvalidatedUsers) != 1 {
		t.Errorf("expected list invalidation for the owner, got %v", cache.InvalidatedUsers)
	}
}

func TestSweep_KeepsRowWhenBlobDeletionFails(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.NewUUID()
	a := &model.Job{ID: uuid.NewUUID(), UserID: userID, CreatedAt: now.Add(-40 * 24 * time.Hour)}
	b := &model.Job{ID: uuid.NewUUID(), UserID: userID, CreatedAt: now.Add(-35 * 24 * time.Hour)}

	strg := failingPrefixStorage{Storage: mock.NewStorage(), failFor: ProcessedPrefix(userID.String(), a.ID.String())}
	repo := mock.NewJobRepo(a, b)
	svc := NewRetentionSweeper(repo, strg, mock.NewCache())

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Found != 2 || report.Cleaned != 1 {
		t.Errorf("report = %+v; want found 2, cleaned 1", report)
	}
	if repo.Get(a.ID) == nil {
		t.Error("job whose blobs could not be deleted must stay")
	}
	if repo.Get(b.ID) != nil {
		t.Error("job whose blobs were deleted must be removed")
	}
}

func TestSweep_ListError(t *testing.T) {
	repo := mock.NewJobRepo()
	repo.ListErr = errors.New("timeout")
	svc := NewRetentionSweeper(repo, mock.NewStorage(), mock.NewCache())

	if _, err := svc.Sweep(context.Background()); !errors.Is(err, repo.ListErr) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestSweep_NothingToDo(t *testing.T) {
	svc := NewRetentionSweeper(mock.NewJobRepo(), mock.NewStorage(), mock.NewCache())

	report, err := svc.Sweep(context.Background())
	if err != nil || report.Found != 0 || report.Cleaned != 0 {
		t.Fatalf("unexpected result: %+v, %v", report, err)
	}
}
