package layer

import (
	"testing"

	"github.com/emberforge/core/world"
	"github.com/emberforge/core/world/chunk"
)

func newTestColumn(x, z int32) *chunk.Chunk {
	c := chunk.New(nil, 4, 0, 0, 0)
	c.SetState(chunk.Normal)
	return c
}

func TestChunkTrackerEntersAndLeaves(t *testing.T) {
	cl := world.NewChunkLayer()
	cl.Add(world.ChunkPos{X: 0, Z: 0}, newTestColumn(0, 0))
	cl.Add(world.ChunkPos{X: 1, Z: 0}, newTestColumn(1, 0))

	tr := NewChunkTracker()
	d := tr.Update(world.ChunkPos{X: 0, Z: 0}, 1, cl)
	if len(d.Init) != 2 {
		t.Fatalf("expected 2 init packets, got %d", len(d.Init))
	}
	if !tr.Contains(world.ChunkPos{X: 1, Z: 0}) {
		t.Fatalf("expected (1,0) to be in view")
	}

	// Move far away: both chunks should unload, none should re-init.
	d = tr.Update(world.ChunkPos{X: 50, Z: 50}, 1, cl)
	if len(d.Unload) != 2 {
		t.Fatalf("expected 2 unload packets, got %d", len(d.Unload))
	}
	if len(d.Init) != 0 {
		t.Fatalf("expected no init packets when moving away, got %d", len(d.Init))
	}
}

func TestChunkTrackerDrainsDeltaOnlyWhenKept(t *testing.T) {
	cl := world.NewChunkLayer()
	col := newTestColumn(0, 0)
	cl.Add(world.ChunkPos{X: 0, Z: 0}, col)

	tr := NewChunkTracker()
	tr.Update(world.ChunkPos{X: 0, Z: 0}, 0, cl)

	col.SetBlockState(0, 0, 0, 5)
	col.SetBlockState(1, 0, 0, 6)

	d := tr.Update(world.ChunkPos{X: 0, Z: 0}, 0, cl)
	if len(d.Update) != 1 {
		t.Fatalf("expected 1 delta packet for the one dirty section, got %d", len(d.Update))
	}
}

func TestChunkTrackerSkipsRemovedChunks(t *testing.T) {
	cl := world.NewChunkLayer()
	col := newTestColumn(0, 0)
	col.SetState(chunk.Removed)
	cl.Add(world.ChunkPos{X: 0, Z: 0}, col)

	tr := NewChunkTracker()
	d := tr.Update(world.ChunkPos{X: 0, Z: 0}, 0, cl)
	if len(d.Init) != 0 {
		t.Fatalf("a removed chunk must not be initialised to a viewer, got %d init packets", len(d.Init))
	}
}
