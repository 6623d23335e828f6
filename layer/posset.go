// Package layer implements the chunk-layer and entity-layer view tracker
// (C8): per-client diffing of what chunks and entities are currently in
// view, and the packet batches (init/update/deinit) that diff produces.
package layer

import "github.com/emberforge/core/world"

// posSet is a hash-bucketed set of world.ChunkPos, keyed by
// world.ChunkPos.Hash rather than Go's built-in map hashing so the view
// tracker's per-tick membership tests (one per loaded chunk, per viewer)
// go through xxhash. (The chunk layer's own index keys on ChunkPos.Pack,
// not on this hash.)
type posSet struct {
	buckets map[uint64][]world.ChunkPos
	size    int
}

func newPosSet(capacityHint int) *posSet {
	return &posSet{buckets: make(map[uint64][]world.ChunkPos, capacityHint)}
}

func (s *posSet) Add(p world.ChunkPos) {
	h := p.Hash()
	for _, q := range s.buckets[h] {
		if q == p {
			return
		}
	}
	s.buckets[h] = append(s.buckets[h], p)
	s.size++
}

func (s *posSet) Has(p world.ChunkPos) bool {
	for _, q := range s.buckets[p.Hash()] {
		if q == p {
			return true
		}
	}
	return false
}

func (s *posSet) Remove(p world.ChunkPos) {
	h := p.Hash()
	bucket := s.buckets[h]
	for i, q := range bucket {
		if q == p {
			s.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			s.size--
			return
		}
	}
}

func (s *posSet) Len() int { return s.size }

// Each calls fn for every member position.
func (s *posSet) Each(fn func(world.ChunkPos)) {
	for _, bucket := range s.buckets {
		for _, p := range bucket {
			fn(p)
		}
	}
}
