package chunk

import "testing"

type fakeStateTable struct {
	hasEntity map[int32]bool
}

func (f fakeStateTable) HasBlockEntity(state int32) bool { return f.hasEntity[state] }

func newTestChunk() *Chunk {
	c := New(nil, 16, -4, 0, 1)
	c.SetState(Normal)
	c.SetViewed(true)
	return c
}

func TestSetBlockStateNoopOnSameValue(t *testing.T) {
	c := newTestChunk()
	old := c.SetBlockState(0, 0, 0, 0)
	if old != 0 {
		t.Fatalf("old = %d, want 0", old)
	}
	if _, ok := c.CachedInit(); ok {
		t.Fatal("cache should start invalid")
	}
	c.SetCachedInit([]byte("x"))
	old = c.SetBlockState(0, 0, 0, 0) // I2: same value, no journal, no invalidation
	if old != 0 {
		t.Fatalf("old = %d, want 0", old)
	}
	if _, ok := c.CachedInit(); !ok {
		t.Fatal("cache should remain valid when value unchanged")
	}
	sec := c.Sections()[4] // y=0 -> section index 4 given minSecY=-4
	if len(sec.Delta()) != 0 {
		t.Fatalf("delta = %v, want empty", sec.Delta())
	}
}

func TestChunkDeltaBatching(t *testing.T) {
	c := newTestChunk()
	c.SetCachedInit([]byte("x"))

	c.SetBlockState(1, 0, 0, 5)
	c.SetBlockState(2, 0, 0, 7)
	c.SetBlockState(2, 0, 0, 7) // same value again: no new entry

	sec := c.Sections()[4]
	if got := len(sec.Delta()); got != 2 {
		t.Fatalf("delta length = %d, want 2", got)
	}
	if _, ok := c.CachedInit(); ok {
		t.Fatal("cache should be invalidated by observable mutation (R-J4)")
	}
}

func TestBlockEntitySynthesisedForCarryingState(t *testing.T) {
	table := fakeStateTable{hasEntity: map[int32]bool{99: true}}
	c := New(table, 16, -4, 0, 1)
	c.SetState(Normal)

	c.SetBlockState(0, 0, 0, 99)
	be, ok := c.BlockEntity(0, 0, 0)
	if !ok {
		t.Fatal("expected a synthesised block entity")
	}
	if be.Data != nil {
		t.Fatalf("synthesised block entity should be empty, got %+v", be)
	}

	c.SetBlockEntity(0, 0, 0, BlockEntity{Type: 3, Data: []byte{1, 2}})
	c.SetBlockState(0, 0, 0, 99) // same state again, no-op, existing entity left alone
	be, _ = c.BlockEntity(0, 0, 0)
	if be.Type != 3 {
		t.Fatalf("existing block entity was overwritten: %+v", be)
	}
}

func TestChunkViewedInvariant(t *testing.T) {
	c := New(nil, 4, 0, 0, 0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic marking an Added chunk as viewed")
		}
	}()
	c.SetViewed(true) // I3: Added chunk must never be viewed
}

func TestFillBlockStatesSingleSectionViewed(t *testing.T) {
	c := newTestChunk()
	sec := c.Sections()[4]
	if sec.Blocks().Shape() != Single {
		t.Fatalf("fresh section shape = %v, want Single", sec.Blocks().Shape())
	}
	c.FillBlockStates(7)
	if got := len(sec.Delta()); got != blocksPerSection {
		t.Fatalf("delta length after fill = %d, want %d", got, blocksPerSection)
	}
}

func TestFillBlockStatesSkippedWhenNotViewed(t *testing.T) {
	c := New(nil, 16, -4, 0, 1)
	c.SetState(Normal) // not viewed
	c.FillBlockStates(7)
	sec := c.Sections()[4]
	if got := len(sec.Delta()); got != 0 {
		t.Fatalf("delta length = %d, want 0 when chunk is not viewed", got)
	}
	if got := sec.Blocks().Get(0); got != 7 {
		t.Fatalf("fill did not apply: got %d", got)
	}
}

func TestBiomeOutOfBoundsPanics(t *testing.T) {
	c := New(nil, 4, 0, 0, 0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range x/z")
		}
	}()
	c.Biome(16, 0, 0)
}
