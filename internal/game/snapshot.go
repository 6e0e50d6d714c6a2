package game

import (
	"sync"
	"time"
)

// CircleSnapshot is an immutable copy of one visible circle.
type CircleSnapshot struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"radius" msgpack:"r"`
	Color  string  `json:"color" msgpack:"c"`
	State  string  `json:"state" msgpack:"s"`
}

// GameSnapshot is a complete immutable view of a session for renderers
// and the API. Done circles are not included.
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence" msgpack:"seq"`
	Timestamp  time.Time `json:"timestamp" msgpack:"ts"`
	TickNumber uint64    `json:"tick" msgpack:"tick"`

	Width  float64 `json:"width" msgpack:"w"`
	Height float64 `json:"height" msgpack:"h"`

	State      GameState `json:"stateCode" msgpack:"stateCode"`
	StateName  string    `json:"state" msgpack:"state"`
	Level      int       `json:"level" msgpack:"level"`
	FinalLevel int       `json:"finalLevel" msgpack:"finalLevel"`
	RoundScore int       `json:"roundScore" msgpack:"roundScore"`
	TargetNum  int       `json:"targetNum" msgpack:"targetNum"`
	NumCircles int       `json:"numCircles" msgpack:"numCircles"`
	TotalScore int       `json:"totalScore" msgpack:"totalScore"`
	Paused     bool      `json:"paused" msgpack:"paused"`
	Debug      bool      `json:"debug" msgpack:"debug"`
	DeltaTime  float64   `json:"dt" msgpack:"dt"`

	WinMessage  string `json:"winMessage" msgpack:"winMessage"`
	FailMessage string `json:"failMessage" msgpack:"failMessage"`

	HasNext        bool `json:"hasNext" msgpack:"hasNext"`
	NextTargetNum  int  `json:"nextTargetNum,omitempty" msgpack:"nextTargetNum,omitempty"`
	NextNumCircles int  `json:"nextNumCircles,omitempty" msgpack:"nextNumCircles,omitempty"`

	Circles []CircleSnapshot `json:"circles" msgpack:"circles"`
}

// Snapshot captures the session into snap, reusing snap's circle slice.
func (s *Session) Snapshot(snap *GameSnapshot) {
	spec := s.CurrentLevel()

	snap.Width = s.bounds.Width
	snap.Height = s.bounds.Height
	snap.State = s.state
	snap.StateName = s.state.String()
	snap.Level = s.level
	snap.FinalLevel = len(s.levels)
	snap.RoundScore = s.roundScore
	snap.TargetNum = spec.TargetNum
	snap.NumCircles = spec.NumCircles
	snap.TotalScore = s.totalScore
	snap.Paused = s.paused
	snap.Debug = s.debug
	snap.DeltaTime = s.clock.LastDT()
	snap.WinMessage = spec.WinMessage
	snap.FailMessage = spec.FailMessage

	next, ok := s.NextLevel()
	snap.HasNext = ok
	snap.NextTargetNum = next.TargetNum
	snap.NextNumCircles = next.NumCircles

	snap.Circles = snap.Circles[:0]
	for _, c := range s.circles {
		if c.State == CircleDone {
			continue
		}
		snap.Circles = append(snap.Circles, CircleSnapshot{
			X:      c.X,
			Y:      c.Y,
			Radius: c.Radius,
			Color:  c.color,
			State:  c.State.String(),
		})
	}
}

// SnapshotPool triple-buffers snapshots between the game loop and readers.
//
// The producer fills a slot no reader can see, then publishes it. Readers get
// a private copy, so they never observe a slot being rewritten.
type SnapshotPool struct {
	mu        sync.RWMutex
	snapshots [3]GameSnapshot
	writeIdx  uint32
	readIdx   uint32
	sequence  uint64
	published bool
}

// NewSnapshotPool creates a pool with room for maxCircles per snapshot.
func NewSnapshotPool(maxCircles int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := range pool.snapshots {
		pool.snapshots[i].Circles = make([]CircleSnapshot, 0, maxCircles)
	}
	return pool
}

// AcquireWrite returns the next slot to fill. Producer only.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	p.writeIdx = (p.readIdx + 1) % 3
	snap := &p.snapshots[p.writeIdx]

	p.sequence++
	snap.Sequence = p.sequence
	snap.Timestamp = time.Now()
	snap.Circles = snap.Circles[:0]
	return snap
}

// PublishWrite makes the slot from the last AcquireWrite visible to readers.
func (p *SnapshotPool) PublishWrite() {
	p.mu.Lock()
	p.readIdx = p.writeIdx
	p.published = true
	p.mu.Unlock()
}

// AcquireRead returns a copy of the latest published snapshot.
// The bool is false until something has been published.
func (p *SnapshotPool) AcquireRead() (GameSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.published {
		return GameSnapshot{}, false
	}
	snap := p.snapshots[p.readIdx]
	snap.Circles = append([]CircleSnapshot(nil), snap.Circles...)
	return snap, true
}
