// Package playerlist implements the tab-list roster (C11): the set of
// entries every connected client sees, broadcast as a global layer during
// the tick scheduler's PostUpdate stage and diffed per-connection exactly
// like a chunk or entity layer (§4.8, §4.11).
package playerlist

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is one roster row.
type Entry struct {
	UUID        uuid.UUID
	Name        string
	GameMode    int32
	Latency     int32
	DisplayName string
}

// Roster is the process-wide tab-list state, guarded by its own lock. The
// server adds and removes entries from connection goroutines as players
// enter and leave Play.
type Roster struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{entries: make(map[uuid.UUID]Entry)}
}

// Add inserts or replaces an entry.
func (r *Roster) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.UUID] = e
}

// Remove drops the entry for id, reporting whether it was present.
func (r *Roster) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// UpdateLatency sets the reported ping for id, a no-op if id isn't rostered
// (e.g. the keepalive round-trip landed between join and the first roster
// broadcast).
func (r *Roster) UpdateLatency(id uuid.UUID, ms int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.Latency = ms
		r.entries[id] = e
	}
}

// Entries returns a snapshot of every rostered entry.
func (r *Roster) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// Len returns the number of rostered entries.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
