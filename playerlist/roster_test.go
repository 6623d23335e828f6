package playerlist

import (
	"testing"

	"github.com/google/uuid"
)

func TestTrackerDiffsAddAndRemove(t *testing.T) {
	r := NewRoster()
	a := uuid.New()
	r.Add(Entry{UUID: a, Name: "alice"})

	tr := NewTracker()
	d := tr.Update(r)
	if len(d.Add) != 1 || d.Add[0].UUID != a {
		t.Fatalf("expected alice added, got %+v", d.Add)
	}

	r.Remove(a)
	d = tr.Update(r)
	if len(d.Remove) != 1 || d.Remove[0].UUID != a {
		t.Fatalf("expected alice removed, got %+v", d.Remove)
	}
	if len(d.Add) != 0 {
		t.Fatalf("expected no re-add, got %+v", d.Add)
	}
}

func TestRosterUpdateLatencyIgnoresUnknown(t *testing.T) {
	r := NewRoster()
	r.UpdateLatency(uuid.New(), 50) // must not panic
	if r.Len() != 0 {
		t.Fatalf("expected roster to remain empty, got %d entries", r.Len())
	}
}
