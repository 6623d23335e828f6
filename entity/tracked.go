package entity

// terminator marks the end of a non-empty tracked-data blob (§3.3). Index
// 0xFF itself is reserved and may never be assigned to a tracked field.
const terminator byte = 0xFF

// TrackedEntry is one (index, type-tag, value) triple of a tracked-data
// blob.
type TrackedEntry struct {
	Index byte
	Type  byte
	Value []byte
}

// TrackedData holds an entity's init buffer (sent in full on first view)
// and update buffer (sent when dirty, cleared each tick). Both are
// upsert-by-index: writing an already-present index replaces it in place
// rather than appending a duplicate.
type TrackedData struct {
	init   []TrackedEntry
	update []TrackedEntry
}

// NewTrackedData returns an empty tracked-data holder.
func NewTrackedData() *TrackedData {
	return &TrackedData{}
}

// SetInit upserts an entry into the init buffer.
func (t *TrackedData) SetInit(index, typ byte, value []byte) {
	checkIndex(index)
	t.init = upsert(t.init, index, typ, value)
}

// Update upserts an entry into the update buffer. Callers typically also
// call SetInit with the same value so that later viewers see it in the
// init blob too.
func (t *TrackedData) Update(index, typ byte, value []byte) {
	checkIndex(index)
	t.update = upsert(t.update, index, typ, value)
}

// InitBlob serialises the init buffer, 0xFF-terminated (non-empty only).
func (t *TrackedData) InitBlob() []byte { return encodeBlob(t.init) }

// UpdateBlob serialises the update buffer accumulated since the last
// ClearUpdate, 0xFF-terminated (non-empty only).
func (t *TrackedData) UpdateBlob() []byte { return encodeBlob(t.update) }

// ClearUpdate empties the update buffer (I5).
func (t *TrackedData) ClearUpdate() { t.update = t.update[:0] }

func checkIndex(index byte) {
	if index == terminator {
		panic("entity: tracked-data index 0xFF is reserved")
	}
}

func upsert(entries []TrackedEntry, index, typ byte, value []byte) []TrackedEntry {
	for i, e := range entries {
		if e.Index == index {
			entries[i] = TrackedEntry{Index: index, Type: typ, Value: value}
			return entries
		}
	}
	return append(entries, TrackedEntry{Index: index, Type: typ, Value: value})
}

func encodeBlob(entries []TrackedEntry) []byte {
	if len(entries) == 0 {
		return nil
	}
	buf := make([]byte, 0, len(entries)*3+1)
	for _, e := range entries {
		buf = append(buf, e.Index, e.Type)
		buf = append(buf, e.Value...)
	}
	return append(buf, terminator)
}
