package game

import (
	"sync"
	"time"
)

// TickHandle identifies a pending tick request. The zero handle is never
// issued.
type TickHandle uint64

// Scheduler hands out next-tick callbacks. It is the only way the engine
// loop is driven, so pausing is just not asking for another tick.
type Scheduler interface {
	// RequestNextTick runs fn once at the next tick.
	RequestNextTick(fn func(now time.Time)) TickHandle
	// CancelTick drops a pending request. Unknown, fired, already cancelled,
	// and zero handles are ignored.
	CancelTick(h TickHandle)
}

// TimerScheduler fires each request after one frame interval of wall time.
type TimerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	nextID  TickHandle
	pending map[TickHandle]*time.Timer
}

// NewTimerScheduler creates a scheduler ticking at fps frames per second.
func NewTimerScheduler(fps int) *TimerScheduler {
	if fps <= 0 {
		fps = int(DefaultMaxFPS)
	}
	return &TimerScheduler{
		interval: time.Second / time.Duration(fps),
		pending:  make(map[TickHandle]*time.Timer),
	}
}

func (s *TimerScheduler) RequestNextTick(fn func(now time.Time)) TickHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.pending[id] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		_, ok := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()

		if ok {
			fn(time.Now())
		}
	})
	return id
}

func (s *TimerScheduler) CancelTick(h TickHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.pending[h]; ok {
		t.Stop()
		delete(s.pending, h)
	}
}

// Pending returns the number of outstanding requests.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// FrameScheduler is driven by the host: each Fire runs the requests made
// before it. Frontends with their own frame callback (and tests) use it.
type FrameScheduler struct {
	mu      sync.Mutex
	nextID  TickHandle
	pending []frameRequest
	firing  []frameRequest // batch of the running Fire
}

type frameRequest struct {
	id TickHandle
	fn func(time.Time)
}

// NewFrameScheduler creates an empty frame scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

func (s *FrameScheduler) RequestNextTick(fn func(now time.Time)) TickHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.pending = append(s.pending, frameRequest{id: s.nextID, fn: fn})
	return s.nextID
}

func (s *FrameScheduler) CancelTick(h TickHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.pending {
		if r.id == h {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
	for i := range s.firing {
		if s.firing[i].id == h {
			s.firing[i].fn = nil
			return
		}
	}
}

// Fire runs every request pending at call time and returns how many ran.
// Requests made by the callbacks wait for the next Fire.
func (s *FrameScheduler) Fire(now time.Time) int {
	s.mu.Lock()
	s.firing = s.pending
	s.pending = nil
	n := len(s.firing)
	s.mu.Unlock()

	ran := 0
	for i := 0; i < n; i++ {
		s.mu.Lock()
		fn := s.firing[i].fn
		s.firing[i].fn = nil
		s.mu.Unlock()

		if fn != nil {
			fn(now)
			ran++
		}
	}

	s.mu.Lock()
	s.firing = nil
	s.mu.Unlock()
	return ran
}

// Pending returns the number of outstanding requests.
func (s *FrameScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
