package packet

import (
	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// ChunkData is the "init" packet for a chunk column: the full paletted
// section data plus any block entities (§4.8 step 2). Data is the already
// serialised section array produced by world/chunk; the core treats it as
// an opaque blob here so the wire package does not need to know the
// section-encoding details.
type ChunkData struct {
	X, Z          int32
	Data          []byte
	BlockEntities []ChunkBlockEntity
}

// ChunkBlockEntity is one entry of ChunkData's block-entity list.
type ChunkBlockEntity struct {
	PackedXZ byte // (x<<4)|z, local to the column
	Y        int16
	Type     int32
	NBT      []byte // opaque, produced by the external NBT codec (§6.4)
}

func (p *ChunkData) Encode(w *protocol.Writer) {
	w.Int32(p.X)
	w.Int32(p.Z)
	w.ByteArray(p.Data)
	w.VarInt(int32(len(p.BlockEntities)))
	for _, be := range p.BlockEntities {
		w.Uint8(be.PackedXZ)
		w.Int16(be.Y)
		w.VarInt(be.Type)
		w.ByteArray(be.NBT)
	}
}

func (p *ChunkData) Decode(r *protocol.Reader) error {
	p.X = r.Int32()
	p.Z = r.Int32()
	p.Data = r.ByteArray()
	n := r.VarInt()
	p.BlockEntities = make([]ChunkBlockEntity, 0, max32(n, 0))
	for i := int32(0); i < n && r.Err() == nil; i++ {
		var be ChunkBlockEntity
		be.PackedXZ = r.Uint8()
		be.Y = r.Int16()
		be.Type = r.VarInt()
		be.NBT = r.ByteArray()
		p.BlockEntities = append(p.BlockEntities, be)
	}
	return r.Err()
}

// UnloadChunk tells the client a chunk has left its view (§4.8 step 5).
type UnloadChunk struct {
	X, Z int32
}

func (p *UnloadChunk) Encode(w *protocol.Writer) {
	w.Int32(p.X)
	w.Int32(p.Z)
}

func (p *UnloadChunk) Decode(r *protocol.Reader) error {
	p.X = r.Int32()
	p.Z = r.Int32()
	return r.Err()
}

// BlockUpdate is the single-entry form of a block change, used when a
// section's delta journal holds exactly one entry (§4.6).
type BlockUpdate struct {
	Position int64 // packed BlockPos
	State    int32
}

func (p *BlockUpdate) Encode(w *protocol.Writer) {
	w.Int64(p.Position)
	w.VarInt(p.State)
}

func (p *BlockUpdate) Decode(r *protocol.Reader) error {
	p.Position = r.Int64()
	p.State = r.VarInt()
	return r.Err()
}

// ChunkDeltaUpdate carries every entry of one section's delta journal in a
// single packet when that journal holds more than one entry (§4.6). Each
// Entries value is a packed VarLong: state<<12 | (x<<8 | z<<4 | local_y).
type ChunkDeltaUpdate struct {
	SectionX, SectionY, SectionZ int32
	Entries                      []int64
}

func (p *ChunkDeltaUpdate) Encode(w *protocol.Writer) {
	w.Int32(p.SectionX)
	w.Int32(p.SectionY)
	w.Int32(p.SectionZ)
	w.VarInt(int32(len(p.Entries)))
	for _, e := range p.Entries {
		w.VarLong(e)
	}
}

func (p *ChunkDeltaUpdate) Decode(r *protocol.Reader) error {
	p.SectionX = r.Int32()
	p.SectionY = r.Int32()
	p.SectionZ = r.Int32()
	n := r.VarInt()
	p.Entries = make([]int64, 0, max32(n, 0))
	for i := int32(0); i < n && r.Err() == nil; i++ {
		p.Entries = append(p.Entries, r.VarLong())
	}
	return r.Err()
}

// BiomeUpdate notifies the client that a chunk's biome container changed
// without any block change (§4.8 step 4).
type BiomeUpdate struct {
	X, Z int32
	Data []byte
}

func (p *BiomeUpdate) Encode(w *protocol.Writer) {
	w.Int32(p.X)
	w.Int32(p.Z)
	w.ByteArray(p.Data)
}

func (p *BiomeUpdate) Decode(r *protocol.Reader) error {
	p.X = r.Int32()
	p.Z = r.Int32()
	p.Data = r.ByteArray()
	return r.Err()
}

// RegisterPlayChunk adds the chunk-layer Play packets to reg.
func RegisterPlayChunk(reg *protocol.Registry) {
	reg.Register(conn.Play, conn.Clientbound, 0x20, func() protocol.Packet { return &ChunkData{} })
	reg.Register(conn.Play, conn.Clientbound, 0x21, func() protocol.Packet { return &UnloadChunk{} })
	reg.Register(conn.Play, conn.Clientbound, 0x22, func() protocol.Packet { return &BlockUpdate{} })
	reg.Register(conn.Play, conn.Clientbound, 0x23, func() protocol.Packet { return &ChunkDeltaUpdate{} })
	reg.Register(conn.Play, conn.Clientbound, 0x24, func() protocol.Packet { return &BiomeUpdate{} })
}
