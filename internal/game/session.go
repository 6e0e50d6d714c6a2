package game

import (
	"math/rand"
	"time"
)

// GameState is the round-level state of a session.
type GameState uint8

const (
	StateBegin GameState = iota
	StateDefault
	StateExploding
	StateRoundOver
	StateRepeatLevel
	StateEnd
)

// String returns the lowercase state name
func (s GameState) String() string {
	switch s {
	case StateBegin:
		return "begin"
	case StateDefault:
		return "default"
	case StateExploding:
		return "exploding"
	case StateRoundOver:
		return "round_over"
	case StateRepeatLevel:
		return "repeat_level"
	case StateEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Dimmed reports whether circles are drawn faded in this state.
func (s GameState) Dimmed() bool {
	return s == StateRoundOver || s == StateRepeatLevel || s == StateEnd
}

// HitTrigger says what caused a circle to explode.
type HitTrigger uint8

const (
	HitClick HitTrigger = iota
	HitChain
)

func (t HitTrigger) String() string {
	if t == HitClick {
		return "click"
	}
	return "chain"
}

// HitEvent describes one circle reaching the exploding stage.
type HitEvent struct {
	Level      int
	Index      int
	X, Y       float64
	Trigger    HitTrigger
	RoundScore int
}

// RoundResult is reported once per round when the last explosion settles.
type RoundResult struct {
	Level      int
	RoundScore int
	Target     int
	NumCircles int
	TotalScore int
	Passed     bool
}

// SessionConfig configures a new session.
type SessionConfig struct {
	Bounds Bounds
	Levels []LevelSpec // nil uses DefaultLevels
	Audio  Audio       // nil is silent
	Rand   *rand.Rand  // nil seeds from the clock
	MinFPS float64
	MaxFPS float64
}

// Session is the whole mutable game: state machine, scores, and circles.
//
// A Session is not safe for concurrent use. Engine serialises access to it.
type Session struct {
	bounds   Bounds
	levels   []LevelSpec
	audio    Audio
	rng      *rand.Rand
	resolver *Resolver
	clock    *DeltaClock

	state      GameState
	level      int
	roundScore int
	totalScore int
	circles    []*Circle
	paused     bool
	debug      bool

	// Hooks, called synchronously from the mutating call.
	OnHit       func(HitEvent)
	OnRoundEnd  func(RoundResult)
	OnLevelLoad func(level int, spec LevelSpec)
}

// NewSession creates a session in the begin state with no circles.
func NewSession(cfg SessionConfig) *Session {
	levels := cfg.Levels
	if len(levels) == 0 {
		levels = Levels()
	}
	audio := cfg.Audio
	if audio == nil {
		audio = NopAudio{}
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Bounds.Width <= 0 || cfg.Bounds.Height <= 0 {
		cfg.Bounds = Bounds{Width: 640, Height: 480}
	}

	return &Session{
		bounds:   cfg.Bounds,
		levels:   levels,
		audio:    audio,
		rng:      rng,
		resolver: NewResolver(cfg.Bounds),
		clock:    NewDeltaClock(cfg.MinFPS, cfg.MaxFPS),
		state:    StateBegin,
	}
}

// LoadLevel replaces the circles with a fresh set for level n and resets the
// round score. Out-of-range indices are clamped to the table.
func (s *Session) LoadLevel(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(s.levels) {
		n = len(s.levels) - 1
	}
	s.level = n
	s.roundScore = 0
	s.circles = MakeCircles(s.levels[n].NumCircles, s.bounds, s.rng)

	if s.OnLevelLoad != nil {
		s.OnLevelLoad(n, s.levels[n])
	}
}

// HandleClick applies a primary-pointer press at canvas point (x, y).
// It returns true if the click changed the session.
func (s *Session) HandleClick(x, y float64) bool {
	if s.paused {
		s.SetPaused(false)
		return true
	}

	switch s.state {
	case StateExploding:
		return false

	case StateBegin:
		s.audio.PlayBGAudio()
		s.LoadLevel(s.level)
		s.state = StateDefault
		return true

	case StateRoundOver:
		s.audio.PlayBGAudio()
		if s.level >= len(s.levels)-1 {
			s.state = StateEnd
			return true
		}
		s.state = StateDefault
		s.LoadLevel(s.level + 1)
		return true

	case StateRepeatLevel:
		s.audio.PlayBGAudio()
		s.state = StateDefault
		s.LoadLevel(s.level)
		return true

	case StateEnd:
		s.audio.PlayBGAudio()
		s.Reset()
		s.state = StateDefault
		s.LoadLevel(0)
		return true
	}

	i := CircleAt(s.circles, x, y)
	if i < 0 {
		return false
	}
	s.audio.PlayBGAudio()
	s.circles[i].Detonate()
	s.state = StateExploding
	s.hit(i, HitClick)
	return true
}

// Reset clears scores and level back to a fresh game without changing state.
func (s *Session) Reset() {
	s.level = 0
	s.roundScore = 0
	s.totalScore = 0
	s.circles = nil
}

func (s *Session) hit(i int, trigger HitTrigger) {
	s.roundScore++
	s.audio.PlayEffect()

	if s.OnHit != nil {
		c := s.circles[i]
		s.OnHit(HitEvent{
			Level:      s.level,
			Index:      i,
			X:          c.X,
			Y:          c.Y,
			Trigger:    trigger,
			RoundScore: s.roundScore,
		})
	}
}

// Step advances the simulation by dt seconds. It does nothing while paused.
func (s *Session) Step(dt float64) {
	if s.paused {
		return
	}

	for _, c := range s.circles {
		c.Update(dt, s.bounds)
	}

	if s.state != StateExploding {
		return
	}

	for _, i := range s.resolver.Resolve(s.circles) {
		s.hit(i, HitChain)
	}

	if Settled(s.circles) {
		s.endRound()
	}
}

func (s *Session) endRound() {
	s.audio.StopBGAudio()

	spec := s.levels[s.level]
	passed := s.roundScore >= spec.TargetNum
	if passed {
		s.state = StateRoundOver
		s.totalScore += s.roundScore
	} else {
		s.state = StateRepeatLevel
	}

	if s.OnRoundEnd != nil {
		s.OnRoundEnd(RoundResult{
			Level:      s.level,
			RoundScore: s.roundScore,
			Target:     spec.TargetNum,
			NumCircles: spec.NumCircles,
			TotalScore: s.totalScore,
			Passed:     passed,
		})
	}
}

// Advance measures the time since the previous tick, steps the simulation,
// and returns the dt used. While paused it steps nothing and returns 0.
func (s *Session) Advance(now time.Time) float64 {
	if s.paused {
		return 0
	}
	dt := s.clock.Tick(now)
	s.Step(dt)
	return dt
}

// Cheat awards one bonus point on the start and round-over screens.
func (s *Session) Cheat() bool {
	if s.state != StateBegin && s.state != StateRoundOver {
		return false
	}
	s.totalScore++
	s.audio.PlayEffect()
	return true
}

// SetPaused pauses or resumes the simulation. Resuming restarts delta-time
// measurement so no missed time is caught up. Returns false if unchanged.
func (s *Session) SetPaused(paused bool) bool {
	if s.paused == paused {
		return false
	}
	s.paused = paused
	if paused {
		s.audio.StopBGAudio()
	} else {
		s.clock.Reset()
		s.audio.PlayBGAudio()
	}
	return true
}

// ToggleDebug flips the debug overlay flag and returns the new value.
func (s *Session) ToggleDebug() bool {
	s.debug = !s.debug
	return s.debug
}

// SetDebug sets the debug overlay flag.
func (s *Session) SetDebug(on bool) { s.debug = on }

func (s *Session) State() GameState { return s.state }
func (s *Session) Level() int       { return s.level }
func (s *Session) RoundScore() int  { return s.roundScore }
func (s *Session) TotalScore() int  { return s.totalScore }
func (s *Session) Paused() bool     { return s.paused }
func (s *Session) Debug() bool      { return s.debug }
func (s *Session) Bounds() Bounds   { return s.bounds }
func (s *Session) LastDT() float64  { return s.clock.LastDT() }

// LevelTable returns a copy of the levels in play.
func (s *Session) LevelTable() []LevelSpec {
	levels := make([]LevelSpec, len(s.levels))
	copy(levels, s.levels)
	return levels
}

// CurrentLevel returns the spec of the level in play.
func (s *Session) CurrentLevel() LevelSpec { return s.levels[s.level] }

// NextLevel returns the spec of the following level, if there is one.
func (s *Session) NextLevel() (LevelSpec, bool) {
	if s.level+1 >= len(s.levels) {
		return LevelSpec{}, false
	}
	return s.levels[s.level+1], true
}

// Circles returns the live circle slice. Callers must not keep it across
// mutations.
func (s *Session) Circles() []*Circle { return s.circles }
