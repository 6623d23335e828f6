package world

import (
	"sync"

	"github.com/brentp/intintmap"

	"github.com/emberforge/core/world/chunk"
)

// ChunkLayer is the sparse map of loaded chunks a client (or the server as
// a whole) may be subscribed to (§4.8's "chunk layer"). Lookup by position
// goes through a packed-int64 index into a slot array rather than a plain
// Go map, since every tick's view diff walks this index once per viewer.
type ChunkLayer struct {
	mu    sync.RWMutex
	index *intintmap.Map // packed ChunkPos -> slot+1 (0 means absent)
	slots []*Column
	free  []int
}

// Column pairs a loaded chunk with the position it occupies, since
// *chunk.Chunk itself carries no positional information.
type Column struct {
	Pos   ChunkPos
	Chunk *chunk.Chunk

	viewers int
}

// AddViewer records one more client viewing this column, marking the
// underlying chunk viewed on the 0→1 transition (§3.2's is_viewed flag is
// refcounted across every client subscribed to the same chunk layer).
func (c *Column) AddViewer() {
	c.viewers++
	if c.viewers == 1 && c.Chunk.State() == chunk.Normal {
		c.Chunk.SetViewed(true)
	}
}

// RemoveViewer undoes one AddViewer call, clearing viewed on the 1→0
// transition.
func (c *Column) RemoveViewer() {
	if c.viewers == 0 {
		return
	}
	c.viewers--
	if c.viewers == 0 {
		c.Chunk.SetViewed(false)
	}
}

// Viewers reports how many clients currently view this column.
func (c *Column) Viewers() int { return c.viewers }

// NewChunkLayer returns an empty chunk layer.
func NewChunkLayer() *ChunkLayer {
	return &ChunkLayer{index: intintmap.New(256, 0.75)}
}

// Get returns the column at pos, if loaded.
func (l *ChunkLayer) Get(pos ChunkPos) (*Column, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	slot, ok := l.index.Get(pos.Pack())
	if !ok || slot == 0 {
		return nil, false
	}
	return l.slots[slot-1], true
}

// Add registers c at pos. Adding at an already-occupied position replaces
// the previous column.
func (l *ChunkLayer) Add(pos ChunkPos, c *chunk.Chunk) {
	l.mu.Lock()
	defer l.mu.Unlock()

	col := &Column{Pos: pos, Chunk: c}
	if slot, ok := l.index.Get(pos.Pack()); ok && slot != 0 {
		l.slots[slot-1] = col
		return
	}
	var slot int
	if n := len(l.free); n > 0 {
		slot = l.free[n-1]
		l.free = l.free[:n-1]
		l.slots[slot] = col
	} else {
		slot = len(l.slots)
		l.slots = append(l.slots, col)
	}
	l.index.Put(pos.Pack(), int64(slot+1))
}

// Remove drops the column at pos, returning it if present.
func (l *ChunkLayer) Remove(pos ChunkPos) (*Column, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.index.Get(pos.Pack())
	if !ok || slot == 0 {
		return nil, false
	}
	col := l.slots[slot-1]
	l.slots[slot-1] = nil
	l.free = append(l.free, int(slot-1))
	l.index.Del(pos.Pack())
	return col, true
}

// Len returns the number of loaded columns.
func (l *ChunkLayer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.slots) - len(l.free)
}

// Each calls fn for every loaded column. fn must not mutate the layer.
func (l *ChunkLayer) Each(fn func(*Column)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.slots {
		if c != nil {
			fn(c)
		}
	}
}
