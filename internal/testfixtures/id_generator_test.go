package testfixtures

import (
	"testing"

	"github.com/google/uuid"
)

func TestIDGeneratorProducesStableUUIDs(t *testing.T) {
	gen := NewIDGenerator("class")

	first := gen.Next()
	second := gen.Next()

	if first == second {
		t.Fatalf("expected distinct identifiers, got %q twice", first)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected a UUID, got %q", first)
	}
	if first != gen.Nth(1) || second != gen.Nth(2) {
		t.Fatalf("expected Nth to match the sequence")
	}
	if other := NewIDGenerator("class").Next(); other != first {
		t.Fatalf("expected a fresh generator to repeat the sequence, got %q", other)
	}
	if gen.Issued() != 2 {
		t.Fatalf("expected 2 issued identifiers, got %d", gen.Issued())
	}
}

func TestStableIDDependsOnName(t *testing.T) {
	if StableID("room:a") == StableID("room:b") {
		t.Fatalf("expected different names to give different IDs")
	}
	if StableID("room:a") != StableID("room:a") {
		t.Fatalf("expected StableID to be deterministic")
	}
}
