// Package entity implements the process-wide entity registry: stable
// protocol ids, a UUID index, tracked-data blobs, and the one-shot
// status/animation bitmaps the view tracker streams to clients (§3.3, §4.7).
package entity

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Unassigned is the sentinel ID a newly-constructed Entity carries until
// Manager.Insert allocates it a real protocol id.
const Unassigned int32 = -1

// LayerID identifies the layer (chunk-layer/entity-layer pairing) an entity
// currently belongs to. The zero value means "no layer".
type LayerID int64

// Entity is one live protocol entity: position, look, velocity, tracked
// data, and the one-shot bitmaps a tick's PostUpdate stage clears once
// broadcast (§3.3).
type Entity struct {
	ID   int32
	UUID uuid.UUID
	Kind int32

	Position     mgl64.Vec3
	PrevPosition mgl64.Vec3
	Yaw, Pitch   float32
	HeadYaw      float32
	OnGround     bool
	Velocity     mgl64.Vec3

	Tracked *TrackedData

	// Status and Animation are one-shot event bitmaps: a handler sets bits
	// during Update, the view tracker reads and broadcasts them in
	// PostUpdate, and ClearOneShot zeroes them before the tick ends (I6).
	Status    uint32
	Animation uint32

	LayerID     LayerID
	PrevLayerID LayerID

	// Despawned marks an entity for removal at the next PostUpdate pass
	// (§4.9 stage 4f).
	Despawned bool
}

// New returns an entity with an unassigned protocol id, ready for
// Manager.Insert.
func New(id uuid.UUID, kind int32) *Entity {
	return &Entity{
		ID:      Unassigned,
		UUID:    id,
		Kind:    kind,
		Tracked: NewTrackedData(),
	}
}

// ClearOneShot zeroes the status and animation bitmaps and empties the
// tracked-data update buffer (I5, I6). Called once per entity per tick,
// after the view tracker has read them.
func (e *Entity) ClearOneShot() {
	e.Status = 0
	e.Animation = 0
	e.Tracked.ClearUpdate()
}

// SyncPrev copies the current position and layer into the "previous tick"
// fields, run once per tick after view diffing has consumed the delta.
func (e *Entity) SyncPrev() {
	e.PrevPosition = e.Position
	e.PrevLayerID = e.LayerID
}
