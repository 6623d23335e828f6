package entity

import "testing"

func TestManagerInsertAssignsID(t *testing.T) {
	m := NewManager(nil)
	e := New(mustUUID(t, "11111111-1111-1111-1111-111111111111"), 1)
	m.Insert(e)
	if e.ID == Unassigned {
		t.Fatal("Insert left ID unassigned")
	}
	got, ok := m.ByID(e.ID)
	if !ok || got != e {
		t.Fatalf("ByID(%d) = %v, %v", e.ID, got, ok)
	}
	got, ok = m.ByUUID(e.UUID)
	if !ok || got != e {
		t.Fatalf("ByUUID lookup failed: %v, %v", got, ok)
	}
}

func TestManagerIDSkipsZeroOnWrap(t *testing.T) {
	m := NewManager(nil)
	m.next = 0xFFFFFFFF
	a := New(mustUUID(t, "11111111-1111-1111-1111-111111111111"), 1)
	m.Insert(a)
	if uint32(a.ID) != 0xFFFFFFFF {
		t.Fatalf("first id = %d, want uint32 0xFFFFFFFF", a.ID)
	}
	b := New(mustUUID(t, "22222222-2222-2222-2222-222222222222"), 1)
	m.Insert(b)
	if b.ID == 0 {
		t.Fatal("allocator produced id 0, which is reserved")
	}
	if b.ID != 1 {
		t.Fatalf("after wrap expected id 1, got %d", b.ID)
	}
}

func TestManagerInsertCollisionEvictsOldEntry(t *testing.T) {
	m := NewManager(nil)
	a := New(mustUUID(t, "11111111-1111-1111-1111-111111111111"), 1)
	m.Insert(a)

	b := New(mustUUID(t, "22222222-2222-2222-2222-222222222222"), 2)
	b.ID = a.ID
	m.Insert(b)

	got, ok := m.ByID(a.ID)
	if !ok || got != b {
		t.Fatalf("ByID after collision = %v, want b", got)
	}
	if _, ok := m.ByUUID(a.UUID); ok {
		t.Fatal("evicted entity's UUID mapping should be removed")
	}
}

func TestManagerRemoveDespawned(t *testing.T) {
	m := NewManager(nil)
	a := New(mustUUID(t, "11111111-1111-1111-1111-111111111111"), 1)
	b := New(mustUUID(t, "22222222-2222-2222-2222-222222222222"), 1)
	m.Insert(a)
	m.Insert(b)
	a.Despawned = true

	removed := m.RemoveDespawned()
	if len(removed) != 1 || removed[0] != a {
		t.Fatalf("removed = %v, want [a]", removed)
	}
	if _, ok := m.ByID(a.ID); ok {
		t.Fatal("despawned entity still registered")
	}
	if _, ok := m.ByID(b.ID); !ok {
		t.Fatal("live entity was removed")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}
