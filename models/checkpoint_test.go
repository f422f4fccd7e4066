package models

import (
	"testing"
	"time"
)

func TestDefaultCheckpoints_LoadingPreValidated(t *testing.T) {
	now := time.Now().UTC()
	checkpoints := defaultCheckpoints(now)
	if len(checkpoints) != len(CheckpointNames) {
		t.Fatalf("got %d checkpoints, want %d", len(checkpoints), len(CheckpointNames))
	}
	for _, cp := range checkpoints {
		if cp.Name == CheckpointLoading {
			if !cp.IsValidated() {
				t.Fatalf("Loading checkpoint should start validated")
			}
			continue
		}
		if cp.IsValidated() {
			t.Fatalf("%q checkpoint should start unvalidated", cp.Name)
		}
	}
}

func TestCheckpointValidate_MonotonicRefresh(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	cp := TripCheckpoint{Name: CheckpointDeparted}
	cp.Validate(first)
	if !cp.IsValidated() || !cp.TouchedAt.Equal(first) {
		t.Fatalf("first validation: validated=%v touched=%v", cp.IsValidated(), cp.TouchedAt)
	}

	// Re-validation refreshes the timestamp, never flips the flag back.
	cp.Validate(second)
	if !cp.IsValidated() {
		t.Fatalf("re-validation flipped the flag")
	}
	if !cp.TouchedAt.Equal(second) {
		t.Fatalf("re-validation did not refresh timestamp: got %v, want %v", cp.TouchedAt, second)
	}
}

func TestTripCheckpointLookup(t *testing.T) {
	trip := Trip{Checkpoints: defaultCheckpoints(time.Now().UTC())}
	if cp := trip.Checkpoint(CheckpointCustoms); cp == nil || cp.Name != CheckpointCustoms {
		t.Fatalf("Checkpoint(Customs) = %v", cp)
	}
	if cp := trip.Checkpoint(CheckpointName("Bogus")); cp != nil {
		t.Fatalf("unknown checkpoint should return nil, got %v", cp)
	}
}
