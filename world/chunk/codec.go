package chunk

import "github.com/emberforge/core/protocol"

// EncodeContainer serialises c's current shape directly (a tag byte, the
// palette if any, then the cells). §9 notes the wire layout is not
// prescribed beyond matching Minecraft's documented chunk-section format in
// spirit; this core writes Single and Direct cells as explicit VarInts and
// Indirect cells as their raw 4-bit palette indices, two per byte, rather
// than bit-packing a long array, which keeps the codec here independent of a
// fixed bits-per-cell table supplied by the (out-of-scope) data tables.
func EncodeContainer(w *protocol.Writer, c *PalettedContainer[int32]) {
	w.Uint8(uint8(c.shape))
	switch c.shape {
	case Single:
		w.VarInt(c.single)
	case Indirect:
		w.VarInt(int32(len(c.ind.palette)))
		for _, v := range c.ind.palette {
			w.VarInt(v)
		}
		w.RawBytes(c.ind.indices)
	case Direct:
		for _, v := range c.direct {
			w.VarInt(v)
		}
	}
}

// DecodeContainer reads a container of length cells written by
// EncodeContainer.
func DecodeContainer(r *protocol.Reader, length int) *PalettedContainer[int32] {
	c := &PalettedContainer[int32]{length: length}
	c.shape = Shape(r.Uint8())
	switch c.shape {
	case Single:
		c.single = r.VarInt()
	case Indirect:
		n := r.VarInt()
		pal := make([]int32, max(int(n), 0))
		for i := range pal {
			pal[i] = r.VarInt()
		}
		c.ind = &indirectPalette[int32]{
			palette: pal,
			indices: r.RawBytes((length + 1) / 2),
		}
	case Direct:
		direct := make([]int32, length)
		for i := range direct {
			direct[i] = r.VarInt()
		}
		c.direct = direct
	}
	return c
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// EncodeSections serialises every section of c — block container then biome
// container, bottom to top — into w. This is the payload the chunk-layer
// tracker (C8) embeds as ChunkData.Data for a freshly-viewed column; its
// bytes are independent of any specific viewer and are cached on the Chunk
// itself (CachedInit) so repeated viewers don't re-pay the encode cost.
func EncodeSections(w *protocol.Writer, c *Chunk) {
	for _, sec := range c.sections {
		EncodeContainer(w, sec.blocks)
		EncodeContainer(w, sec.biomes)
	}
}

// DecodeSections reads sectionCount sections written by EncodeSections and
// returns them bottom to top; FromSections builds a Chunk from the result.
func DecodeSections(r *protocol.Reader, sectionCount int) []*Section {
	out := make([]*Section, sectionCount)
	for i := range out {
		out[i] = &Section{
			blocks: DecodeContainer(r, blocksPerSection),
			biomes: DecodeContainer(r, biomesPerSection),
		}
	}
	return out
}
