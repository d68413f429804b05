package uuid

import (
	"testing"

	"github.com/google/uuid"
)

func TestScanValue_RoundTrip(t *testing.T) {
	id := NewUUID()
	v, err := id.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got UUID
	if err := got.Scan(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Errorf("got %s; want %s", got, id)
	}
}

func TestScan_WrongType(t *testing.T) {
	var u UUID
	if err := u.Scan("not-bytes"); err == nil {
		t.Fatal("expected error for string source, got nil")
	}
}

func TestParse(t *testing.T) {
	want := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	got, err := Parse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uuid.UUID(got) != want {
		t.Errorf("got %s; want %s", got, want)
	}

	if _, err := Parse("nope"); err == nil {
		t.Fatal("expected error for invalid uuid")
	}
}

func TestText_RoundTrip(t *testing.T) {
	id := NewUUID()
	b, err := id.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got UUID
	if err := got.UnmarshalText(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Errorf("got %s; want %s", got, id)
	}
}
