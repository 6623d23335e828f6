package entity

import (
	"testing"

	"github.com/google/uuid"
)

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("uuid.Parse(%q): %v", s, err)
	}
	return id
}

func TestClearOneShotResetsBitmapsAndUpdateBuffer(t *testing.T) {
	e := New(mustUUID(t, "11111111-1111-1111-1111-111111111111"), 1)
	e.Status = 0b101
	e.Animation = 0b1
	e.Tracked.Update(0, 0, []byte{9})

	e.ClearOneShot()

	if e.Status != 0 || e.Animation != 0 {
		t.Fatalf("bitmaps not cleared: status=%b animation=%b", e.Status, e.Animation)
	}
	if blob := e.Tracked.UpdateBlob(); blob != nil {
		t.Fatalf("update blob not cleared: %v", blob)
	}
}

func TestSyncPrev(t *testing.T) {
	e := New(mustUUID(t, "11111111-1111-1111-1111-111111111111"), 1)
	e.Position[0], e.Position[1], e.Position[2] = 1, 2, 3
	e.LayerID = 5

	e.SyncPrev()

	if e.PrevPosition != e.Position {
		t.Fatalf("PrevPosition = %v, want %v", e.PrevPosition, e.Position)
	}
	if e.PrevLayerID != 5 {
		t.Fatalf("PrevLayerID = %d, want 5", e.PrevLayerID)
	}
}
