package layer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/emberforge/core/entity"
)

func newTestEntity(t *testing.T, id int32) *entity.Entity {
	t.Helper()
	e := entity.New(uuid.New(), 1)
	e.ID = id
	e.Position = mgl64.Vec3{1, 2, 3}
	e.PrevPosition = e.Position
	return e
}

func TestEntityTrackerSpawnsAndDespawns(t *testing.T) {
	tr := NewEntityTracker()
	a := newTestEntity(t, 1)
	b := newTestEntity(t, 2)

	d := tr.Update([]*entity.Entity{a, b}, 0)
	if len(d.Spawn) != 2 {
		t.Fatalf("expected 2 spawns, got %d", len(d.Spawn))
	}
	if !tr.Spawned(1) || !tr.Spawned(2) {
		t.Fatalf("expected both entities spawned")
	}

	d = tr.Update([]*entity.Entity{a}, 0)
	if d.Despawn == nil || len(d.Despawn.IDs) != 1 || d.Despawn.IDs[0] != 2 {
		t.Fatalf("expected entity 2 despawned, got %+v", d.Despawn)
	}
}

func TestEntityTrackerExcludesSelf(t *testing.T) {
	tr := NewEntityTracker()
	self := newTestEntity(t, 7)

	d := tr.Update([]*entity.Entity{self}, 7)
	if len(d.Spawn) != 0 {
		t.Fatalf("a client should never receive a spawn for itself, got %d", len(d.Spawn))
	}
}

func TestEntityTrackerEmitsPositionDeltaOnMovement(t *testing.T) {
	tr := NewEntityTracker()
	e := newTestEntity(t, 1)
	tr.Update([]*entity.Entity{e}, 0)

	e.PrevPosition = e.Position
	e.Position = mgl64.Vec3{2, 2, 3}

	d := tr.Update([]*entity.Entity{e}, 0)
	if len(d.PositionDelta) != 1 {
		t.Fatalf("expected 1 position delta, got %d", len(d.PositionDelta))
	}
}
