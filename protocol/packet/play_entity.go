package packet

import (
	"github.com/google/uuid"

	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// EntitySpawn introduces a new entity to a viewer (§4.8 step 6).
type EntitySpawn struct {
	ID         int32
	UUID       uuid.UUID
	Kind       int32
	X, Y, Z    float64
	Yaw, Pitch float32
	HeadYaw    float32
	VX, VY, VZ int16
}

func (p *EntitySpawn) Encode(w *protocol.Writer) {
	w.VarInt(p.ID)
	w.UUID(p.UUID)
	w.VarInt(p.Kind)
	w.Float64(p.X)
	w.Float64(p.Y)
	w.Float64(p.Z)
	w.Float32(p.Yaw)
	w.Float32(p.Pitch)
	w.Float32(p.HeadYaw)
	w.Int16(p.VX)
	w.Int16(p.VY)
	w.Int16(p.VZ)
}

func (p *EntitySpawn) Decode(r *protocol.Reader) error {
	p.ID = r.VarInt()
	p.UUID = r.UUID()
	p.Kind = r.VarInt()
	p.X = r.Float64()
	p.Y = r.Float64()
	p.Z = r.Float64()
	p.Yaw = r.Float32()
	p.Pitch = r.Float32()
	p.HeadYaw = r.Float32()
	p.VX = r.Int16()
	p.VY = r.Int16()
	p.VZ = r.Int16()
	return r.Err()
}

// EntityDespawn removes one or more entities from a viewer's view.
type EntityDespawn struct {
	IDs []int32
}

func (p *EntityDespawn) Encode(w *protocol.Writer) {
	w.VarInt(int32(len(p.IDs)))
	for _, id := range p.IDs {
		w.VarInt(id)
	}
}

func (p *EntityDespawn) Decode(r *protocol.Reader) error {
	n := r.VarInt()
	p.IDs = make([]int32, 0, max32(n, 0))
	for i := int32(0); i < n && r.Err() == nil; i++ {
		p.IDs = append(p.IDs, r.VarInt())
	}
	return r.Err()
}

// EntityPositionDelta moves an entity relatively, the common case for
// ordinary movement broadcasts.
type EntityPositionDelta struct {
	ID         int32
	DX, DY, DZ int16 // fixed-point, 1/4096 of a block
	Yaw, Pitch float32
	OnGround   bool
}

func (p *EntityPositionDelta) Encode(w *protocol.Writer) {
	w.VarInt(p.ID)
	w.Int16(p.DX)
	w.Int16(p.DY)
	w.Int16(p.DZ)
	w.Float32(p.Yaw)
	w.Float32(p.Pitch)
	w.Bool(p.OnGround)
}

func (p *EntityPositionDelta) Decode(r *protocol.Reader) error {
	p.ID = r.VarInt()
	p.DX = r.Int16()
	p.DY = r.Int16()
	p.DZ = r.Int16()
	p.Yaw = r.Float32()
	p.Pitch = r.Float32()
	p.OnGround = r.Bool()
	return r.Err()
}

// EntityVelocity updates an entity's velocity for clientside physics.
type EntityVelocity struct {
	ID         int32
	VX, VY, VZ int16
}

func (p *EntityVelocity) Encode(w *protocol.Writer) {
	w.VarInt(p.ID)
	w.Int16(p.VX)
	w.Int16(p.VY)
	w.Int16(p.VZ)
}

func (p *EntityVelocity) Decode(r *protocol.Reader) error {
	p.ID = r.VarInt()
	p.VX = r.Int16()
	p.VY = r.Int16()
	p.VZ = r.Int16()
	return r.Err()
}

// EntityMetadata carries a tracked-data blob, either the init form (sent on
// first view) or the update form (sent when dirty) — the wire shape is
// identical, only when it's sent differs (§3.3).
type EntityMetadata struct {
	ID   int32
	Data []byte // serialised (index, type-tag, value) triples, 0xFF-terminated
}

func (p *EntityMetadata) Encode(w *protocol.Writer) {
	w.VarInt(p.ID)
	w.RawBytes(p.Data)
}

func (p *EntityMetadata) Decode(r *protocol.Reader) error {
	p.ID = r.VarInt()
	p.Data = r.Rest()
	return r.Err()
}

// EntityStatus carries a one-shot status event (e.g. hurt animation).
type EntityStatus struct {
	ID     int32
	Status uint8
}

func (p *EntityStatus) Encode(w *protocol.Writer) {
	w.Int32(p.ID)
	w.Uint8(p.Status)
}

func (p *EntityStatus) Decode(r *protocol.Reader) error {
	p.ID = r.Int32()
	p.Status = r.Uint8()
	return r.Err()
}

// EntityAnimation carries a one-shot animation event (e.g. swing arm).
type EntityAnimation struct {
	ID        int32
	Animation uint8
}

func (p *EntityAnimation) Encode(w *protocol.Writer) {
	w.VarInt(p.ID)
	w.Uint8(p.Animation)
}

func (p *EntityAnimation) Decode(r *protocol.Reader) error {
	p.ID = r.VarInt()
	p.Animation = r.Uint8()
	return r.Err()
}

// RegisterPlayEntity adds the entity-layer Play packets to reg.
func RegisterPlayEntity(reg *protocol.Registry) {
	reg.Register(conn.Play, conn.Clientbound, 0x30, func() protocol.Packet { return &EntitySpawn{} })
	reg.Register(conn.Play, conn.Clientbound, 0x31, func() protocol.Packet { return &EntityDespawn{} })
	reg.Register(conn.Play, conn.Clientbound, 0x32, func() protocol.Packet { return &EntityPositionDelta{} })
	reg.Register(conn.Play, conn.Clientbound, 0x33, func() protocol.Packet { return &EntityVelocity{} })
	reg.Register(conn.Play, conn.Clientbound, 0x34, func() protocol.Packet { return &EntityMetadata{} })
	reg.Register(conn.Play, conn.Clientbound, 0x35, func() protocol.Packet { return &EntityStatus{} })
	reg.Register(conn.Play, conn.Clientbound, 0x36, func() protocol.Packet { return &EntityAnimation{} })
}
