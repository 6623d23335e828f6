package layer

import (
	"github.com/emberforge/core/protocol"
	"github.com/emberforge/core/protocol/packet"
	"github.com/emberforge/core/world"
	"github.com/emberforge/core/world/chunk"
)

// ChunkTracker holds one client's view of a single world.ChunkLayer: the
// set of column positions it currently believes are loaded (§4.8 steps
// 1–5). A connection owns one ChunkTracker per chunk layer it subscribes
// to.
type ChunkTracker struct {
	radius  int32
	center  world.ChunkPos
	visible *posSet
}

// NewChunkTracker returns a tracker with nothing yet in view.
func NewChunkTracker() *ChunkTracker {
	return &ChunkTracker{visible: newPosSet(256)}
}

// Diff holds the packets produced by one Update call, grouped by what
// triggered them. Order matters: per §4.9's ordering guarantee, Init must
// be flushed before any entity-layer packet for an entity inside it.
type Diff struct {
	Init   []*packet.ChunkData
	Update []protocol.Packet // *packet.BlockUpdate, *packet.ChunkDeltaUpdate, *packet.BiomeUpdate
	Unload []*packet.UnloadChunk
}

// Update recomputes the visible set around center at the given radius
// (chunks), against the chunks currently loaded in layer, and returns the
// packets a client needs to reconcile its view.
func (t *ChunkTracker) Update(center world.ChunkPos, radius int32, cl *world.ChunkLayer) Diff {
	t.center, t.radius = center, radius
	wanted := newPosSet(len(world.ViewCircle(center, radius)))
	for _, p := range world.ViewCircle(center, radius) {
		wanted.Add(p)
	}

	var d Diff

	t.visible.Each(func(p world.ChunkPos) {
		if wanted.Has(p) {
			return
		}
		if col, ok := cl.Get(p); ok {
			col.RemoveViewer()
		}
		d.Unload = append(d.Unload, &packet.UnloadChunk{X: p.X, Z: p.Z})
	})
	for _, p := range d.Unload {
		t.visible.Remove(world.ChunkPos{X: p.X, Z: p.Z})
	}

	wanted.Each(func(p world.ChunkPos) {
		col, ok := cl.Get(p)
		if !ok {
			// Not yet loaded server-side; the client will receive it once
			// a later tick loads and we re-run Update.
			return
		}
		if col.Chunk.State() == chunk.Removed {
			return
		}
		if !t.visible.Has(p) {
			t.visible.Add(p)
			col.AddViewer()
			d.Init = append(d.Init, buildChunkData(col))
			return
		}
		if col.Chunk.State() != chunk.Normal {
			return
		}
		d.Update = append(d.Update, drainSectionDeltas(col)...)
		if col.Chunk.ChangedBiomes() {
			d.Update = append(d.Update, buildBiomeUpdate(col))
		}
	})

	return d
}

// Contains reports whether pos is currently in this tracker's visible set.
func (t *ChunkTracker) Contains(pos world.ChunkPos) bool { return t.visible.Has(pos) }

func buildChunkData(col *world.Column) *packet.ChunkData {
	if cached, ok := col.Chunk.CachedInit(); ok {
		return &packet.ChunkData{X: col.Pos.X, Z: col.Pos.Z, Data: cached, BlockEntities: collectBlockEntities(col.Chunk)}
	}
	w := &protocol.Writer{}
	chunk.EncodeSections(w, col.Chunk)
	data := w.Bytes()
	col.Chunk.SetCachedInit(data)
	return &packet.ChunkData{X: col.Pos.X, Z: col.Pos.Z, Data: data, BlockEntities: collectBlockEntities(col.Chunk)}
}

func collectBlockEntities(c *chunk.Chunk) []packet.ChunkBlockEntity {
	var out []packet.ChunkBlockEntity
	c.EachBlockEntity(func(x, y, z int, be chunk.BlockEntity) {
		out = append(out, packet.ChunkBlockEntity{
			PackedXZ: byte(x<<4 | z),
			Y:        int16(y),
			Type:     be.Type,
			NBT:      be.Data,
		})
	})
	return out
}

// drainSectionDeltas turns every section's accumulated journal into block
// update packets per §4.6: a single entry becomes BlockUpdate, more than one
// becomes a ChunkDeltaUpdate. Journals are left intact here; the tick
// scheduler clears them once every viewer's diff pass for the tick is done.
func drainSectionDeltas(col *world.Column) []protocol.Packet {
	var out []protocol.Packet
	for i, sec := range col.Chunk.Sections() {
		entries := sec.Delta()
		switch len(entries) {
		case 0:
			continue
		case 1:
			state := int32(entries[0] >> 12)
			local := entries[0] & 0xFFF
			x := int32(local>>8) & 0xF
			z := int32(local>>4) & 0xF
			y := int32(local) & 0xF
			pos := protocol.BlockPos{
				X: col.Pos.X*16 + x,
				Y: int32(i)*16 + y,
				Z: col.Pos.Z*16 + z,
			}
			out = append(out, &packet.BlockUpdate{Position: pos.Pack(), State: state})
		default:
			cp := make([]int64, len(entries))
			copy(cp, entries)
			out = append(out, &packet.ChunkDeltaUpdate{
				SectionX: col.Pos.X, SectionY: int32(i), SectionZ: col.Pos.Z,
				Entries: cp,
			})
		}
	}
	return out
}

func buildBiomeUpdate(col *world.Column) protocol.Packet {
	w := &protocol.Writer{}
	for _, sec := range col.Chunk.Sections() {
		chunk.EncodeContainer(w, sec.Biomes())
	}
	return &packet.BiomeUpdate{X: col.Pos.X, Z: col.Pos.Z, Data: w.Bytes()}
}
