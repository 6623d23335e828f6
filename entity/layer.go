package entity

import "github.com/brentp/intintmap"

// EntityLayer is the "entity layer" of §4.8: a set of protocol ids a group
// of entities currently belongs to. Membership uses a packed int64 index
// rather than a plain Go set since the view tracker tests membership for
// every tracked entity on every viewer, every tick.
type EntityLayer struct {
	id      LayerID
	members *intintmap.Map
}

// NewEntityLayer returns an empty layer identified by id.
func NewEntityLayer(id LayerID) *EntityLayer {
	return &EntityLayer{id: id, members: intintmap.New(64, 0.75)}
}

// ID returns the layer's identity.
func (l *EntityLayer) ID() LayerID { return l.id }

// Add registers e's protocol id as a member.
func (l *EntityLayer) Add(e *Entity) { l.members.Put(int64(e.ID), 1) }

// Remove drops e's protocol id from the layer.
func (l *EntityLayer) Remove(e *Entity) { l.members.Del(int64(e.ID)) }

// Has reports whether id is currently a member.
func (l *EntityLayer) Has(id int32) bool {
	_, ok := l.members.Get(int64(id))
	return ok
}

// Len returns the number of member entities.
func (l *EntityLayer) Len() int { return l.members.Size() }

// IDs returns every member protocol id, in no particular order.
func (l *EntityLayer) IDs() []int32 {
	keys := l.members.Keys()
	out := make([]int32, len(keys))
	for i, k := range keys {
		out[i] = int32(k)
	}
	return out
}
