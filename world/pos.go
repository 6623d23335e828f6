// Package world ties chunk storage (world/chunk) to a spatial position: the
// chunk-layer map keyed by column position, and the view-distance math the
// layer/view tracker (C8) uses to decide what a client should see.
package world

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// ChunkPos identifies a 16×H×16 column by its column coordinates (§3.2).
type ChunkPos struct {
	X, Z int32
}

// Pack encodes p into a single int64 suitable as an intintmap/map key.
func (p ChunkPos) Pack() int64 {
	return int64(uint64(uint32(p.X))<<32 | uint64(uint32(p.Z)))
}

// UnpackChunkPos reverses Pack.
func UnpackChunkPos(v int64) ChunkPos {
	u := uint64(v)
	return ChunkPos{X: int32(uint32(u >> 32)), Z: int32(uint32(u))}
}

// Hash returns a well-distributed 64-bit hash of p, used where a position
// needs to key a hash set without relying on Go's built-in map hashing
// (e.g. dirty-set membership checks run every tick for every viewer).
func (p ChunkPos) Hash() uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(p.Pack()))
	return xxhash.Sum64(b[:])
}

// DistanceSquared returns the squared Euclidean distance between two column
// positions, in chunks.
func (p ChunkPos) DistanceSquared(o ChunkPos) int64 {
	dx := int64(p.X - o.X)
	dz := int64(p.Z - o.Z)
	return dx*dx + dz*dz
}

// Within reports whether o lies within radius chunks of p (inclusive),
// using a circular (Euclidean) view rather than a square one.
func (p ChunkPos) Within(o ChunkPos, radius int32) bool {
	r := int64(radius)
	return p.DistanceSquared(o) <= r*r
}

// PosFromBlock returns the column position containing the given world x/z.
func PosFromBlock(x, z int32) ChunkPos {
	return ChunkPos{X: x >> 4, Z: z >> 4}
}

// ViewCircle returns every ChunkPos within radius chunks of center in
// row-major order (ascending x, then ascending z); the result is not sorted
// by distance from center.
func ViewCircle(center ChunkPos, radius int32) []ChunkPos {
	if radius < 0 {
		return nil
	}
	out := make([]ChunkPos, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			p := ChunkPos{X: center.X + dx, Z: center.Z + dz}
			if center.Within(p, radius) {
				out = append(out, p)
			}
		}
	}
	return out
}
