package layer

import (
	"github.com/emberforge/core/entity"
	"github.com/emberforge/core/protocol/packet"
)

// EntityTracker holds one client's view of which entities it currently
// considers spawned (§4.8 step 6). A connection owns one EntityTracker per
// entity layer it is subscribed to.
type EntityTracker struct {
	visible map[int32]*entity.Entity
}

// NewEntityTracker returns a tracker with nothing yet spawned.
func NewEntityTracker() *EntityTracker {
	return &EntityTracker{visible: make(map[int32]*entity.Entity)}
}

// EntityDiff holds the packets one Update call produced.
type EntityDiff struct {
	Spawn         []*packet.EntitySpawn
	Despawn       *packet.EntityDespawn
	MetadataInit  []*packet.EntityMetadata
	Metadata      []*packet.EntityMetadata // update-buffer diffs for entities already spawned
	PositionDelta []*packet.EntityPositionDelta
}

// Update reconciles the tracker's visible set against candidates — every
// entity that should be in view this tick, as decided by the caller (e.g.
// "within the client's loaded chunk radius") — except selfID, which a
// client never needs spawned for itself. Candidates already spawned get
// their position/metadata update diffs; newly visible ones get a full
// spawn + init metadata; no-longer-visible ones are batched into one
// despawn packet.
func (t *EntityTracker) Update(candidates []*entity.Entity, selfID int32) EntityDiff {
	var d EntityDiff
	seen := make(map[int32]bool, len(candidates))

	for _, e := range candidates {
		if e.ID == selfID || e.Despawned {
			continue
		}
		seen[e.ID] = true
		if _, ok := t.visible[e.ID]; !ok {
			t.visible[e.ID] = e
			d.Spawn = append(d.Spawn, spawnPacketFor(e))
			if blob := e.Tracked.InitBlob(); blob != nil {
				d.MetadataInit = append(d.MetadataInit, &packet.EntityMetadata{ID: e.ID, Data: blob})
			}
			continue
		}
		if blob := e.Tracked.UpdateBlob(); blob != nil {
			d.Metadata = append(d.Metadata, &packet.EntityMetadata{ID: e.ID, Data: blob})
		}
		if delta, changed := positionDelta(e); changed {
			d.PositionDelta = append(d.PositionDelta, delta)
		}
	}

	var gone []int32
	for id := range t.visible {
		if !seen[id] {
			gone = append(gone, id)
			delete(t.visible, id)
		}
	}
	if len(gone) > 0 {
		d.Despawn = &packet.EntityDespawn{IDs: gone}
	}
	return d
}

// Spawned reports whether id is currently in this tracker's visible set.
func (t *EntityTracker) Spawned(id int32) bool {
	_, ok := t.visible[id]
	return ok
}

func spawnPacketFor(e *entity.Entity) *packet.EntitySpawn {
	return &packet.EntitySpawn{
		ID:      e.ID,
		UUID:    e.UUID,
		Kind:    e.Kind,
		X:       e.Position[0],
		Y:       e.Position[1],
		Z:       e.Position[2],
		Yaw:     e.Yaw,
		Pitch:   e.Pitch,
		HeadYaw: e.HeadYaw,
		VX:      fixedVelocity(e.Velocity[0]),
		VY:      fixedVelocity(e.Velocity[1]),
		VZ:      fixedVelocity(e.Velocity[2]),
	}
}

// fixedVelocity converts a blocks-per-tick velocity component to the
// 1/8000ths-of-a-block fixed-point format EntitySpawn/EntityVelocity use.
func fixedVelocity(v float64) int16 {
	fv := v * 8000
	if fv > 32767 {
		fv = 32767
	} else if fv < -32768 {
		fv = -32768
	}
	return int16(fv)
}

func positionDelta(e *entity.Entity) (*packet.EntityPositionDelta, bool) {
	dx := e.Position[0] - e.PrevPosition[0]
	dy := e.Position[1] - e.PrevPosition[1]
	dz := e.Position[2] - e.PrevPosition[2]
	if dx == 0 && dy == 0 && dz == 0 {
		return nil, false
	}
	return &packet.EntityPositionDelta{
		ID:       e.ID,
		DX:       fixedDelta(dx),
		DY:       fixedDelta(dy),
		DZ:       fixedDelta(dz),
		Yaw:      e.Yaw,
		Pitch:    e.Pitch,
		OnGround: e.OnGround,
	}, true
}

// fixedDelta converts a block delta to the 1/4096ths-of-a-block fixed-point
// format EntityPositionDelta uses.
func fixedDelta(d float64) int16 {
	fd := d * 4096
	if fd > 32767 {
		fd = 32767
	} else if fd < -32768 {
		fd = -32768
	}
	return int16(fd)
}
