package chunk

import "fmt"

// Cell counts for the two container kinds a section holds (§3.2).
const (
	blocksPerSection = 16 * 16 * 16
	biomesPerSection = 4 * 4 * 4
)

// State is a chunk's lifecycle marker within the current tick (§3.2).
type State uint8

const (
	// Added means the chunk was inserted this tick and has not yet been
	// flushed to any viewer.
	Added State = iota
	// Normal means the chunk is loaded and may be viewed.
	Normal
	// Removed means the chunk is scheduled to leave storage this tick.
	Removed
)

// StateTable is the external block-data collaborator the core consults to
// decide whether a block state needs a synthesised block entity (§6.4,
// R-J3). The generated data tables themselves are out of scope.
type StateTable interface {
	HasBlockEntity(state int32) bool
}

// BlockEntity is the opaque NBT-shaped payload attached to a block position.
// The core never inspects NBT; Data is produced and consumed by the
// external NBT codec (§6.4).
type BlockEntity struct {
	Type int32
	Data []byte
}

// Section is one 16-high cubic slice of a Chunk: a block-state container, a
// biome container, and the delta journal accumulated against the former
// this tick (§3.2).
type Section struct {
	blocks *PalettedContainer[int32]
	biomes *PalettedContainer[int32]
	delta  []int64
}

func newSection(defaultState, defaultBiome int32) *Section {
	return &Section{
		blocks: NewPalettedContainer(blocksPerSection, defaultState),
		biomes: NewPalettedContainer(biomesPerSection, defaultBiome),
	}
}

// Blocks returns the section's block-state container.
func (s *Section) Blocks() *PalettedContainer[int32] { return s.blocks }

// Biomes returns the section's biome container.
func (s *Section) Biomes() *PalettedContainer[int32] { return s.biomes }

// Delta returns the packed VarLong entries accumulated this tick (§4.6).
// Each entry is state<<12 | x<<8 | z<<4 | local_y.
func (s *Section) Delta() []int64 { return s.delta }

// ClearDelta empties the journal; called after a viewer flush or at the
// end of a tick once every viewer has drained it.
func (s *Section) ClearDelta() { s.delta = s.delta[:0] }

func (s *Section) record(lx, ly, lz int, state int32) {
	s.delta = append(s.delta, packDeltaEntry(lx, ly, lz, state))
}

func packDeltaEntry(x, y, z int, state int32) int64 {
	return int64(state)<<12 | int64(x&0xF)<<8 | int64(z&0xF)<<4 | int64(y&0xF)
}

func blockIndex(x, y, z int) int { return (y*16+z)*16 + x }

func fromBlockIndex(idx int) (x, y, z int) {
	x = idx % 16
	rem := idx / 16
	z = rem % 16
	y = rem / 16
	return
}

func biomeIndex(x, y, z int) int { return (y*4+z)*4 + x }

// Chunk is a 16×H×16 column: an array of Sections, a sparse block-entity
// map, and the viewer-visibility bookkeeping described in §3.2.
type Chunk struct {
	table    StateTable
	sections []*Section
	minSecY  int // section index (y/16) of sections[0]

	blockEntities map[int]BlockEntity

	state         State
	viewed        bool
	changedBiomes bool
	cachedInit    []byte
}

// New returns a chunk of sectionCount sections, the lowest of which covers
// world-y [minSectionY*16, minSectionY*16+16), with every block state and
// biome cell initialised to the given defaults. table may be nil, in which
// case no block state is ever treated as carrying a block entity.
func New(table StateTable, sectionCount, minSectionY int, defaultState, defaultBiome int32) *Chunk {
	if sectionCount <= 0 || sectionCount*16 > 4096 {
		panic(fmt.Sprintf("chunk: section count %d out of bounds", sectionCount))
	}
	sections := make([]*Section, sectionCount)
	for i := range sections {
		sections[i] = newSection(defaultState, defaultBiome)
	}
	return &Chunk{
		table:         table,
		sections:      sections,
		minSecY:       minSectionY,
		blockEntities: make(map[int]BlockEntity),
		state:         Added,
	}
}

// FromSections builds a Chunk directly from a pre-decoded section array
// (the product of DecodeSections), for reconstructing a column received
// over the wire.
func FromSections(table StateTable, sections []*Section, minSectionY int) *Chunk {
	return &Chunk{
		table:         table,
		sections:      sections,
		minSecY:       minSectionY,
		blockEntities: make(map[int]BlockEntity),
		state:         Added,
	}
}

// Sections returns the chunk's sections, bottom to top.
func (c *Chunk) Sections() []*Section { return c.sections }

// State returns the chunk's current lifecycle marker.
func (c *Chunk) State() State { return c.state }

// SetState sets the chunk's lifecycle marker.
func (c *Chunk) SetState(s State) { c.state = s }

// Viewed reports whether the chunk is currently considered visible to at
// least one client.
func (c *Chunk) Viewed() bool { return c.viewed }

// SetViewed marks the chunk viewed or not. Marking a chunk in the Added or
// Removed state as viewed violates I3 and panics.
func (c *Chunk) SetViewed(v bool) {
	if v && c.state != Normal {
		panic("chunk: a chunk in Added or Removed state cannot be marked viewed")
	}
	c.viewed = v
}

// ChangedBiomes reports whether any biome cell changed since the last
// ClearChangedBiomes call.
func (c *Chunk) ChangedBiomes() bool { return c.changedBiomes }

// ClearChangedBiomes resets the changed-biomes flag.
func (c *Chunk) ClearChangedBiomes() { c.changedBiomes = false }

// CachedInit returns the cached init-packet bytes and whether they are
// still valid. Any observable mutation invalidates them (R-J4).
func (c *Chunk) CachedInit() ([]byte, bool) {
	if c.cachedInit == nil {
		return nil, false
	}
	return c.cachedInit, true
}

// SetCachedInit stores the freshly-built init packet bytes; callers rebuild
// once CachedInit reports invalid and repopulate via this method.
func (c *Chunk) SetCachedInit(b []byte) { c.cachedInit = b }

func (c *Chunk) invalidateCache() { c.cachedInit = nil }

func (c *Chunk) checkXZ(x, z int) {
	if x < 0 || x >= 16 || z < 0 || z >= 16 {
		panic(fmt.Sprintf("chunk: position (%d,_,%d) is out of bounds", x, z))
	}
}

func (c *Chunk) sectionAt(y int) (*Section, int, bool) {
	sy := y >> 4
	idx := sy - c.minSecY
	if idx < 0 || idx >= len(c.sections) {
		return nil, 0, false
	}
	return c.sections[idx], y - sy*16, true
}

func localKey(x, y, z int) int { return x + 16*z + 256*y }

// BlockState returns the block state at the given chunk-local x/z and
// world y.
func (c *Chunk) BlockState(x, y, z int) int32 {
	c.checkXZ(x, z)
	sec, ly, ok := c.sectionAt(y)
	if !ok {
		panic(fmt.Sprintf("chunk: y %d is out of bounds", y))
	}
	return sec.blocks.Get(blockIndex(x, ly, z))
}

// SetBlockState writes s at the given position and returns the previous
// state. Writing the current value is a no-op on the journal and the
// cache (I2, R-J1). If s carries a block entity per the state table and
// none is set yet, an empty one is synthesised (R-J3).
func (c *Chunk) SetBlockState(x, y, z int, s int32) int32 {
	c.checkXZ(x, z)
	sec, ly, ok := c.sectionAt(y)
	if !ok {
		panic(fmt.Sprintf("chunk: y %d is out of bounds", y))
	}
	idx := blockIndex(x, ly, z)
	old := sec.blocks.Get(idx)
	if old == s {
		return old
	}
	sec.blocks.Set(idx, s)
	if c.viewed {
		sec.record(x, ly, z, s)
	}
	c.invalidateCache()
	if c.table != nil && c.table.HasBlockEntity(s) {
		key := localKey(x, y, z)
		if _, exists := c.blockEntities[key]; !exists {
			c.blockEntities[key] = BlockEntity{}
		}
	}
	return old
}

// FillBlockStates sets every cell in every section to s. Per R-J2, a
// section already in the Single shape at a different value produces one
// journal entry per cell when viewed, and none at all when not viewed;
// other shapes are normalised cell-by-cell under the same rule.
func (c *Chunk) FillBlockStates(s int32) {
	for _, sec := range c.sections {
		if sec.blocks.Shape() == Single {
			if sec.blocks.Get(0) == s {
				continue
			}
			sec.blocks.Fill(s)
			if c.viewed {
				for i := 0; i < blocksPerSection; i++ {
					lx, ly, lz := fromBlockIndex(i)
					sec.record(lx, ly, lz, s)
				}
			}
			c.invalidateCache()
			continue
		}
		for i := 0; i < blocksPerSection; i++ {
			if sec.blocks.Get(i) == s {
				continue
			}
			sec.blocks.Set(i, s)
			if c.viewed {
				lx, ly, lz := fromBlockIndex(i)
				sec.record(lx, ly, lz, s)
			}
			c.invalidateCache()
		}
	}
}

// BlockEntity returns the compound at the given position, if any.
func (c *Chunk) BlockEntity(x, y, z int) (BlockEntity, bool) {
	c.checkXZ(x, z)
	be, ok := c.blockEntities[localKey(x, y, z)]
	return be, ok
}

// SetBlockEntity attaches be to the given position, returning whatever was
// there before.
func (c *Chunk) SetBlockEntity(x, y, z int, be BlockEntity) (BlockEntity, bool) {
	c.checkXZ(x, z)
	key := localKey(x, y, z)
	old, had := c.blockEntities[key]
	c.blockEntities[key] = be
	c.invalidateCache()
	return old, had
}

// EachBlockEntity calls fn for every block entity in the chunk with its
// chunk-local x, world y, and chunk-local z.
func (c *Chunk) EachBlockEntity(fn func(x, y, z int, be BlockEntity)) {
	for key, be := range c.blockEntities {
		x := key & 0xF
		z := (key >> 4) & 0xF
		y := key >> 8
		fn(x, y, z, be)
	}
}

// ClearBlockEntities empties the block-entity map.
func (c *Chunk) ClearBlockEntities() {
	c.blockEntities = make(map[int]BlockEntity)
	c.invalidateCache()
}

// Biome returns the biome id at the given position, sampled at 4-cell
// resolution.
func (c *Chunk) Biome(x, y, z int) int32 {
	c.checkXZ(x, z)
	sec, ly, ok := c.sectionAt(y)
	if !ok {
		panic(fmt.Sprintf("chunk: y %d is out of bounds", y))
	}
	return sec.biomes.Get(biomeIndex(x/4, ly/4, z/4))
}

// SetBiome writes the biome id at the given position and returns the
// previous value.
func (c *Chunk) SetBiome(x, y, z int, b int32) int32 {
	c.checkXZ(x, z)
	sec, ly, ok := c.sectionAt(y)
	if !ok {
		panic(fmt.Sprintf("chunk: y %d is out of bounds", y))
	}
	idx := biomeIndex(x/4, ly/4, z/4)
	old := sec.biomes.Get(idx)
	if old == b {
		return old
	}
	sec.biomes.Set(idx, b)
	c.changedBiomes = true
	c.invalidateCache()
	return old
}

// FillBiomes sets every biome cell in every section to b.
func (c *Chunk) FillBiomes(b int32) {
	for _, sec := range c.sections {
		if sec.biomes.Shape() == Single && sec.biomes.Get(0) == b {
			continue
		}
		sec.biomes.Fill(b)
		c.changedBiomes = true
	}
	c.invalidateCache()
}

// Optimise narrows every section's containers to their smallest
// representation (§4.5's optimise contract, applied chunk-wide).
func (c *Chunk) Optimise() {
	for _, sec := range c.sections {
		sec.blocks.Optimise()
		sec.biomes.Optimise()
	}
}

// Clear resets every section to defaultState/defaultBiome, drops all block
// entities and delta journals, and invalidates the cache.
func (c *Chunk) Clear(defaultState, defaultBiome int32) {
	for _, sec := range c.sections {
		sec.blocks.Fill(defaultState)
		sec.biomes.Fill(defaultBiome)
		sec.ClearDelta()
	}
	c.blockEntities = make(map[int]BlockEntity)
	c.changedBiomes = false
	c.invalidateCache()
}
