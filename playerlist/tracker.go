package playerlist

import (
	"github.com/google/uuid"

	"github.com/emberforge/core/protocol/packet"
)

// Tracker diffs one connection's view of the Roster against its last-sent
// state, the same entered/left shape as a chunk or entity layer (§4.8,
// §4.11): a client sees PlayerInfoAdd for entries new since last tick and
// PlayerInfoRemove for ones that disappeared.
type Tracker struct {
	known map[uuid.UUID]Entry
}

// NewTracker returns a tracker with nothing yet known.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[uuid.UUID]Entry)}
}

// Diff holds the packets one Update call produced.
type Diff struct {
	Add    []*packet.PlayerInfoAdd
	Remove []*packet.PlayerInfoRemove
}

// Update reconciles the tracker against the roster's current snapshot.
func (t *Tracker) Update(r *Roster) Diff {
	var d Diff
	current := make(map[uuid.UUID]Entry, r.Len())
	for _, e := range r.Entries() {
		current[e.UUID] = e
		if _, ok := t.known[e.UUID]; !ok {
			d.Add = append(d.Add, &packet.PlayerInfoAdd{
				UUID:     e.UUID,
				Name:     e.Name,
				GameMode: e.GameMode,
				Latency:  e.Latency,
			})
		}
	}
	for id := range t.known {
		if _, ok := current[id]; !ok {
			d.Remove = append(d.Remove, &packet.PlayerInfoRemove{UUID: id})
		}
	}
	t.known = current
	return d
}
