package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"boomshine/internal/input"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	Session   SessionConfig
	Scheduler Scheduler // nil uses a TimerScheduler at FPS
	FPS       int
}

// Engine owns one Session and drives it from a Scheduler.
//
// Every mutation (ticks, clicks, pause) happens under one mutex, so a tick
// always sees the state left by the previous operation and finishes before
// the next one starts.
type Engine struct {
	mu        sync.Mutex
	session   *Session
	scheduler Scheduler
	fps       int

	running   bool
	pending   TickHandle
	tickCount uint64

	snapshotPool *SnapshotPool
	eventLog     *EventLog

	// Hooks, called with the engine lock held. They must not call back into
	// the engine. OnFrame's snapshot is only valid for the duration of the call.
	OnFrame    func(snap *GameSnapshot)
	OnTick     func(elapsed time.Duration)
	OnHit      func(HitEvent)
	OnRoundEnd func(RoundResult)
}

// NewEngine creates a stopped engine with a session in the begin state.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.FPS <= 0 {
		cfg.FPS = int(DefaultMaxFPS)
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewTimerScheduler(cfg.FPS)
	}

	session := NewSession(cfg.Session)

	maxCircles := 0
	for _, l := range session.LevelTable() {
		if l.NumCircles > maxCircles {
			maxCircles = l.NumCircles
		}
	}

	e := &Engine{
		session:      session,
		scheduler:    cfg.Scheduler,
		fps:          cfg.FPS,
		snapshotPool: NewSnapshotPool(maxCircles),
		eventLog:     NewEventLog(),
	}

	session.OnLevelLoad = e.handleLevelLoad
	session.OnHit = e.handleHit
	session.OnRoundEnd = e.handleRoundEnd

	e.publish()
	return e
}

// Start schedules the first tick. Calling Start on a running engine is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}
	e.running = true
	e.session.clock.Reset()
	if !e.session.Paused() {
		e.scheduleLocked()
	}

	log.Printf("🎮 Game engine started at %d FPS", e.fps)
}

// Stop cancels the pending tick. Calling Stop twice is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	e.cancelLocked()
	log.Println("🛑 Game engine stopped")
}

func (e *Engine) scheduleLocked() {
	h := new(TickHandle)
	*h = e.scheduler.RequestNextTick(func(now time.Time) {
		e.tick(h, now)
	})
	e.pending = *h
}

func (e *Engine) cancelLocked() {
	e.scheduler.CancelTick(e.pending)
	e.pending = 0
}

// tick is the loop body. A callback whose handle is no longer the pending
// one was cancelled after it fired and is ignored.
func (e *Engine) tick(h *TickHandle, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running || *h != e.pending {
		return
	}
	start := time.Now()

	e.scheduleLocked()

	if e.session.Paused() {
		e.publish()
		return
	}

	e.tickCount++
	e.session.Advance(now)
	e.publish()

	if e.OnTick != nil {
		e.OnTick(time.Since(start))
	}
}

// publish writes the current session into the snapshot pool.
func (e *Engine) publish() {
	snap := e.snapshotPool.AcquireWrite()
	snap.TickNumber = e.tickCount
	e.session.Snapshot(snap)
	e.snapshotPool.PublishWrite()

	if e.OnFrame != nil {
		e.OnFrame(snap)
	}
}

// Click applies a pointer press. A click while paused resumes instead.
func (e *Engine) Click(x, y float64, source string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Paused() {
		return e.resumeLocked(source)
	}

	before := e.session.State()
	applied := e.session.HandleClick(x, y)

	e.eventLog.EmitSimple(EventTypeClick, e.tickCount, source, ClickPayload{
		X: x, Y: y, State: before.String(), Applied: applied,
	})
	if before == StateEnd && applied {
		log.Printf("🔄 Game reset by %s", source)
		e.eventLog.EmitSimple(EventTypeGameReset, e.tickCount, source, ScorePayload{})
	}

	if applied {
		e.publish()
	}
	return applied
}

// Pause suspends the loop: the pending tick is cancelled and the paused
// frame is published once. Returns false if already paused.
func (e *Engine) Pause(source string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.SetPaused(true) {
		return false
	}
	e.cancelLocked()

	log.Printf("⏸️ Paused by %s", source)
	e.eventLog.EmitSimple(EventTypePause, e.tickCount, source, nil)
	e.publish()
	return true
}

// Resume restarts the loop from where it stopped. Returns false if not paused.
func (e *Engine) Resume(source string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resumeLocked(source)
}

func (e *Engine) resumeLocked(source string) bool {
	if !e.session.SetPaused(false) {
		return false
	}

	// A stale tick left behind must not run alongside the fresh one.
	e.cancelLocked()
	if e.running {
		e.scheduleLocked()
	}

	log.Printf("▶️ Resumed by %s", source)
	e.eventLog.EmitSimple(EventTypeResume, e.tickCount, source, nil)
	e.publish()
	return true
}

// TogglePause pauses a running game or resumes a paused one.
func (e *Engine) TogglePause(source string) bool {
	e.mu.Lock()
	paused := e.session.Paused()
	e.mu.Unlock()

	if paused {
		return e.Resume(source)
	}
	return e.Pause(source)
}

// ToggleDebug flips the debug overlay and returns the new value.
func (e *Engine) ToggleDebug() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	on := e.session.ToggleDebug()
	e.publish()
	return on
}

// Cheat awards a bonus point on the start and round-over screens.
func (e *Engine) Cheat(source string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.Cheat() {
		return false
	}
	e.eventLog.EmitSimple(EventTypeCheat, e.tickCount, source, ScorePayload{TotalScore: e.session.TotalScore()})
	e.publish()
	return true
}

// Dispatch applies an input action. Actions that change nothing are not errors.
func (e *Engine) Dispatch(a input.Action) error {
	switch a.Kind {
	case input.KindClick:
		e.Click(a.X, a.Y, a.Source)
	case input.KindPause:
		e.Pause(a.Source)
	case input.KindResume:
		e.Resume(a.Source)
	case input.KindTogglePause:
		e.TogglePause(a.Source)
	case input.KindToggleDebug:
		e.ToggleDebug()
	case input.KindCheat:
		e.Cheat(a.Source)
	default:
		return fmt.Errorf("%w: kind %d", input.ErrUnknownAction, a.Kind)
	}
	return nil
}

func (e *Engine) handleLevelLoad(level int, spec LevelSpec) {
	log.Printf("🟢 Level %d loaded: %d circles, target %d", level+1, spec.NumCircles, spec.TargetNum)
	e.eventLog.EmitSimple(EventTypeLevelLoad, e.tickCount, "", LevelLoadPayload{
		Level:      level,
		TargetNum:  spec.TargetNum,
		NumCircles: spec.NumCircles,
	})
}

func (e *Engine) handleHit(h HitEvent) {
	e.eventLog.EmitSimple(EventTypeCircleHit, e.tickCount, "", CircleHitPayload{
		Level:      h.Level,
		Index:      h.Index,
		X:          h.X,
		Y:          h.Y,
		Trigger:    h.Trigger.String(),
		RoundScore: h.RoundScore,
	})
	if e.OnHit != nil {
		e.OnHit(h)
	}
}

func (e *Engine) handleRoundEnd(r RoundResult) {
	if r.Passed {
		log.Printf("🏆 Level %d cleared: %d/%d (total %d)", r.Level+1, r.RoundScore, r.Target, r.TotalScore)
	} else {
		log.Printf("💥 Level %d failed: %d/%d", r.Level+1, r.RoundScore, r.Target)
	}
	e.eventLog.EmitSimple(EventTypeRoundEnd, e.tickCount, "", RoundEndPayload{
		Level:      r.Level,
		RoundScore: r.RoundScore,
		TargetNum:  r.Target,
		TotalScore: r.TotalScore,
		Passed:     r.Passed,
	})
	if e.OnRoundEnd != nil {
		e.OnRoundEnd(r)
	}
}

// Snapshot returns a copy of the latest published frame.
func (e *Engine) Snapshot() GameSnapshot {
	snap, _ := e.snapshotPool.AcquireRead()
	return snap
}

// Levels returns the level table in play.
func (e *Engine) Levels() []LevelSpec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.LevelTable()
}

// Running reports whether the loop is started.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// TickCount returns the number of simulated ticks.
func (e *Engine) TickCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickCount
}

// StartEventLog begins recording events to filePath.
func (e *Engine) StartEventLog(filePath string) error {
	if err := e.eventLog.Start(filePath); err != nil {
		return fmt.Errorf("start event log: %w", err)
	}
	return nil
}

// StopEventLog flushes and closes the event log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// EventLogStats returns event log counters.
func (e *Engine) EventLogStats() EventLogStats {
	return e.eventLog.Stats()
}
