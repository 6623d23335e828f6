package tick

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSchedulerRunsStagesInOrder(t *testing.T) {
	s := NewScheduler(200, nil) // fast enough for a short test

	var mu sync.Mutex
	var order []string
	record := func(name string) { mu.Lock(); order = append(order, name); mu.Unlock() }

	s.OnPreUpdate(func() { record("pre") })
	s.OnEventLoop(func() bool { record("event"); return false })
	s.OnUpdate(func() { record("update") })
	pu := s.PostUpdate()
	pu.InitNewEntities = append(pu.InitNewEntities, func() { record("post-init") })
	pu.DiffViews = append(pu.DiffViews, func() { record("post-diff") })
	pu.RemoveDespawned = append(pu.RemoveDespawned, func() { record("post-remove") })

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(order) < 6 {
		t.Fatalf("expected at least one full tick's stages, got %v", order)
	}
	want := []string{"pre", "event", "update", "post-init", "post-diff", "post-remove"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("stage %d: got %q, want %q (full: %v)", i, order[i], w, order)
		}
	}
}

func TestSchedulerEventLoopReiteratesWhileMoreIsTrue(t *testing.T) {
	s := NewScheduler(200, nil)
	calls := 0
	remaining := 3
	s.OnEventLoop(func() bool {
		calls++
		if remaining > 0 {
			remaining--
			return true
		}
		return false
	})

	s.runTick()
	if calls != 4 {
		t.Fatalf("expected 4 event-loop calls (1 + 3 reiterations), got %d", calls)
	}
}

func TestSchedulerEventLoopBoundedPerTick(t *testing.T) {
	s := NewScheduler(200, nil)
	calls := 0
	s.OnEventLoop(func() bool { calls++; return true })

	s.runTick()
	if calls != maxEventLoopIterations {
		t.Fatalf("expected exactly %d calls, got %d", maxEventLoopIterations, calls)
	}
}
