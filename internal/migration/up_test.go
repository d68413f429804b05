package migration

import (
	"strings"
	"testing"
)

func TestAvailableVersions(t *testing.T) {
	versions, err := availableVersions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Fatalf("versions = %v; want [1 2]", versions)
	}
}

func TestPreviousVersion(t *testing.T) {
	prev, err := previousVersion(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prev != 1 {
		t.Errorf("prev = %d; want 1", prev)
	}

	_, err = previousVersion(1)
	if err == nil || !strings.Contains(err.Error(), "could not determine previous version before 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMigrateDown_InvalidSteps(t *testing.T) {
	if err := MigrateDown(nil, 0); err == nil {
		t.Fatal("expected error for zero steps")
	}
}

func TestMigrations_CreateExpectedTables(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/0002_create_jobs.up.sql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql := string(b)
	for _, col := range []string{"ai_status", "ai_analysis", "retry_count", "thumbnails", "idx_jobs_user_created"} {
		if !strings.Contains(sql, col) {
			t.Errorf("jobs migration missing %q", col)
		}
	}
}
