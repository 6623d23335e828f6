// Package tick implements the fixed-rate tick loop (C9): the stage
// ordering that drives receive → apply → simulate → diff → broadcast →
// flush every tick, and TPS tracking in the teacher's own style (a rolling
// average sampled every tpsSampleSize ticks, logged once if it drops below
// a warning threshold).
package tick

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

const (
	// DefaultRate is the default tick rate in Hz (§3.4, "Tick" glossary
	// entry: 50ms per tick).
	DefaultRate = 20

	tpsSampleSize       = 20
	tpsWarningThreshold = 19.0
)

// PostUpdateHooks groups the six ordered sub-stages of §4.9's PostUpdate:
// the scheduler runs them in this fixed order regardless of how many
// callbacks are registered against each, since the spec's ordering
// guarantee (chunk-layer packets before entity-layer packets, a teleport
// flushed before any further position packet) depends on it.
type PostUpdateHooks struct {
	InitNewEntities       []func()
	BroadcastGlobalLayers []func()
	DiffViews             []func()
	FlushSendBuffers      []func()
	ClearOneShotFlags     []func()
	RemoveDespawned       []func()
}

// Scheduler runs the fixed-rate tick loop described in §4.9. A server owns
// exactly one Scheduler.
type Scheduler struct {
	interval time.Duration
	log      *slog.Logger

	preUpdate  []func()
	eventLoop  []func() (more bool)
	update     []func()
	postUpdate PostUpdateHooks

	closing chan struct{}
	done    chan struct{}

	tickCount atomic.Uint64
	tpsBits   atomic.Uint64 // math.Float64bits, 0 until the first sample window completes
}

// NewScheduler returns a Scheduler ticking at rateHz (DefaultRate if <= 0).
// A nil log falls back to slog.Default().
func NewScheduler(rateHz int, log *slog.Logger) *Scheduler {
	if rateHz <= 0 {
		rateHz = DefaultRate
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		interval: time.Second / time.Duration(rateHz),
		log:      log,
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnPreUpdate registers fn to run during PreUpdate (drain sockets, decode,
// enqueue events, accept new connections).
func (s *Scheduler) OnPreUpdate(fn func()) { s.preUpdate = append(s.preUpdate, fn) }

// OnEventLoop registers fn to run during EventLoopUpdate. fn returns
// whether it enqueued new events that warrant another iteration this tick.
func (s *Scheduler) OnEventLoop(fn func() bool) { s.eventLoop = append(s.eventLoop, fn) }

// OnUpdate registers fn to run during Update (gameplay systems mutating
// world state).
func (s *Scheduler) OnUpdate(fn func()) { s.update = append(s.update, fn) }

// PostUpdate returns the scheduler's PostUpdateHooks for registration.
func (s *Scheduler) PostUpdate() *PostUpdateHooks { return &s.postUpdate }

// maxEventLoopIterations bounds how many EventLoopUpdate passes (the first
// one included) one tick may run, so a handler that keeps enqueueing events cannot starve
// Update/PostUpdate indefinitely within a single tick.
const maxEventLoopIterations = 8

// Run blocks, driving the tick loop until ctx is cancelled or Stop is
// called. It is meant to be the only goroutine that ever mutates world
// state (§5).
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(s.interval)
	defer t.Stop()

	var (
		lastTick    time.Time
		durationSum time.Duration
		samples     int
		warned      bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closing:
			return
		case now := <-t.C:
			if !lastTick.IsZero() {
				d := now.Sub(lastTick)
				durationSum += d
				samples++
				if samples >= tpsSampleSize {
					s.sampleTPS(durationSum/time.Duration(samples), &warned)
					durationSum, samples = 0, 0
				}
			}
			lastTick = now
			s.runTick()
			s.tickCount.Add(1)
		}
	}
}

func (s *Scheduler) sampleTPS(avg time.Duration, warned *bool) {
	if avg <= 0 {
		s.tpsBits.Store(0)
		return
	}
	tps := 1.0 / avg.Seconds()
	s.tpsBits.Store(math.Float64bits(tps))
	if tps < tpsWarningThreshold {
		if !*warned {
			s.log.Warn("tick rate dropped below threshold", "tps", tps)
			*warned = true
		}
	} else {
		*warned = false
	}
}

// TPS returns the most recently sampled ticks-per-second, or 0 before the
// first sample window completes.
func (s *Scheduler) TPS() float64 {
	bits := s.tpsBits.Load()
	if bits == 0 {
		return 0
	}
	return math.Float64frombits(bits)
}

// TickCount returns the number of ticks run so far.
func (s *Scheduler) TickCount() uint64 { return s.tickCount.Load() }

// Stop ends the loop after the current tick finishes and blocks until Run
// returns.
func (s *Scheduler) Stop() {
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	<-s.done
}

func (s *Scheduler) runTick() {
	for _, fn := range s.preUpdate {
		fn()
	}

	for i := 0; i < maxEventLoopIterations; i++ {
		more := false
		for _, fn := range s.eventLoop {
			if fn() {
				more = true
			}
		}
		if !more {
			break
		}
	}

	for _, fn := range s.update {
		fn()
	}

	for _, fn := range s.postUpdate.InitNewEntities {
		fn()
	}
	for _, fn := range s.postUpdate.BroadcastGlobalLayers {
		fn()
	}
	for _, fn := range s.postUpdate.DiffViews {
		fn()
	}
	for _, fn := range s.postUpdate.FlushSendBuffers {
		fn()
	}
	for _, fn := range s.postUpdate.ClearOneShotFlags {
		fn()
	}
	for _, fn := range s.postUpdate.RemoveDespawned {
		fn()
	}
}
