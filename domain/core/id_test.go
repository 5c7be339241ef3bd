package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

// TestIDString tests ID string conversion
func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

func TestParseSessionID(t *testing.T) {
	id := NewSessionID()

	parsed, err := ParseSessionID("  " + id.String() + " ")
	if err != nil {
		t.Fatalf("ParseSessionID returned unexpected error: %v", err)
	}
	if parsed != id {
		t.Errorf("ParseSessionID = %s, want %s", parsed, id)
	}

	for _, bad := range []string{"", "   ", "not-a-uuid"} {
		if _, err := ParseSessionID(bad); err == nil {
			t.Errorf("ParseSessionID(%q) expected error", bad)
		}
	}
}

func TestHashShort(t *testing.T) {
	h := NewHash([]byte("workbook"))
	if len(h.String()) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(h.String()))
	}
	if h.Short() != h.String()[:12] {
		t.Errorf("Short() = %s, want prefix of %s", h.Short(), h)
	}
	if NewHash([]byte("workbook")) != h {
		t.Error("hash of identical data differs")
	}
	if Hash("abc").Short() != "abc" {
		t.Errorf("Short() of a short hash = %s", Hash("abc").Short())
	}
}
