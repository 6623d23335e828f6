package session

import "testing"

// TestTeleportHandshake reproduces scenario 5 of §8 with the validator's own
// numbering: a first teleport to (10,64,10) gets id 1; movement before
// confirmation is rejected by the
// caller observing Pending(); after confirming, movement is accepted.
func TestTeleportHandshake(t *testing.T) {
	var v TeleportValidator
	id := v.Teleport(10, 64, 10, 0, 0)
	if id != 1 {
		t.Fatalf("expected first teleport id 1, got %d", id)
	}
	if !v.Pending() {
		t.Fatal("expected a pending teleport immediately after Teleport")
	}

	if err := v.Confirm(id + 1); err == nil {
		t.Fatal("expected an error for an unexpected teleport id")
	}
	if !v.Pending() {
		t.Fatal("a failed confirm must not clear pending")
	}

	if err := v.Confirm(id); err != nil {
		t.Fatalf("Confirm(%d): %v", id, err)
	}
	if v.Pending() {
		t.Fatal("expected no pending teleport after a correct confirm")
	}
}

func TestTeleportIDsIncreaseMonotonically(t *testing.T) {
	var v TeleportValidator
	first := v.Teleport(0, 0, 0, 0, 0)
	second := v.Teleport(1, 1, 1, 0, 0)
	if second <= first {
		t.Fatalf("expected increasing ids, got %d then %d", first, second)
	}
}
