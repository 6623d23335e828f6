package entity

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager is the process-wide entity registry: a numeric-id map, a UUID
// index, and the monotonic counter that allocates new ids (§3.3, §4.7). A
// server has exactly one Manager, mutated only from the tick thread except
// where noted.
type Manager struct {
	mu     sync.Mutex
	byID   map[int32]*Entity
	byUUID map[uuid.UUID]*Entity
	next   uint32
	log    *slog.Logger
}

// NewManager returns an empty Manager. A nil log falls back to
// slog.Default().
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		byID:   make(map[int32]*Entity),
		byUUID: make(map[uuid.UUID]*Entity),
		next:   1,
		log:    log,
	}
}

func (m *Manager) nextProtocolID() int32 {
	id := m.next
	m.next++
	if m.next == 0 {
		m.next = 1
	}
	return int32(id)
}

// Insert registers e. If e.ID is Unassigned, a fresh id is allocated first.
// A collision with an already-registered id evicts the previous holder
// from both maps and is logged; the new entry wins the slot (I4).
func (m *Manager) Insert(e *Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == Unassigned {
		e.ID = m.nextProtocolID()
	}
	if old, ok := m.byID[e.ID]; ok && old != e {
		m.log.Warn("entity id collision on insert",
			"id", e.ID, "evicted_uuid", old.UUID, "new_uuid", e.UUID)
		delete(m.byUUID, old.UUID)
	}
	m.byID[e.ID] = e
	m.byUUID[e.UUID] = e
}

// ByID looks up a live entity by its protocol id.
func (m *Manager) ByID(id int32) (*Entity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	return e, ok
}

// ByUUID looks up a live entity by its UUID.
func (m *Manager) ByUUID(id uuid.UUID) (*Entity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byUUID[id]
	return e, ok
}

// Remove unregisters e from both maps.
func (m *Manager) Remove(e *Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.byID[e.ID]; ok && cur == e {
		delete(m.byID, e.ID)
	}
	if cur, ok := m.byUUID[e.UUID]; ok && cur == e {
		delete(m.byUUID, e.UUID)
	}
}

// RemoveDespawned removes every entity flagged Despawned, intended to run
// once per tick in PostUpdate (§4.9 stage 4f).
func (m *Manager) RemoveDespawned() []*Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []*Entity
	for id, e := range m.byID {
		if !e.Despawned {
			continue
		}
		delete(m.byID, id)
		delete(m.byUUID, e.UUID)
		removed = append(removed, e)
	}
	return removed
}

// Len returns the number of live entities.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Each calls fn for every live entity. fn must not mutate the manager.
func (m *Manager) Each(fn func(*Entity)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		fn(e)
	}
}
