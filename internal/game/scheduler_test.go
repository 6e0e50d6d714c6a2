package game

import (
	"testing"
	"time"
)

func TestFrameSchedulerRunsPendingOnce(t *testing.T) {
	s := NewFrameScheduler()
	runs := 0
	s.RequestNextTick(func(time.Time) { runs++ })

	if n := s.Fire(time.Now()); n != 1 {
		t.Errorf("Fire ran %d, want 1", n)
	}
	if n := s.Fire(time.Now()); n != 0 {
		t.Errorf("second Fire ran %d, want 0", n)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestFrameSchedulerCancelIsIdempotent(t *testing.T) {
	s := NewFrameScheduler()
	ran := false
	h := s.RequestNextTick(func(time.Time) { ran = true })

	s.CancelTick(h)
	s.CancelTick(h)
	s.CancelTick(0)
	s.CancelTick(9999)

	if s.Fire(time.Now()) != 0 || ran {
		t.Error("cancelled request ran")
	}
}

func TestFrameSchedulerCancelAfterFire(t *testing.T) {
	s := NewFrameScheduler()
	h := s.RequestNextTick(func(time.Time) {})
	s.Fire(time.Now())

	other := 0
	s.RequestNextTick(func(time.Time) { other++ })
	s.CancelTick(h)

	if s.Fire(time.Now()) != 1 || other != 1 {
		t.Error("cancelling a fired handle affected a newer request")
	}
}

func TestFrameSchedulerDefersNestedRequests(t *testing.T) {
	s := NewFrameScheduler()
	depth := 0
	var loop func(time.Time)
	loop = func(time.Time) {
		depth++
		s.RequestNextTick(loop)
	}
	s.RequestNextTick(loop)

	for i := 0; i < 3; i++ {
		s.Fire(time.Now())
	}
	if depth != 3 {
		t.Errorf("depth = %d, want 3", depth)
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}
}

func TestFrameSchedulerCancelDuringFire(t *testing.T) {
	s := NewFrameScheduler()
	var second TickHandle
	ran := false

	s.RequestNextTick(func(time.Time) { s.CancelTick(second) })
	second = s.RequestNextTick(func(time.Time) { ran = true })

	s.Fire(time.Now())
	if ran {
		t.Error("request cancelled by an earlier callback still ran")
	}
}

func TestTimerSchedulerFires(t *testing.T) {
	s := NewTimerScheduler(60)
	done := make(chan time.Time, 1)
	s.RequestNextTick(func(now time.Time) { done <- now })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("tick never fired")
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after fire, want 0", s.Pending())
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := NewTimerScheduler(60)
	fired := make(chan struct{}, 1)
	h := s.RequestNextTick(func(time.Time) { fired <- struct{}{} })

	s.CancelTick(h)
	s.CancelTick(h)

	select {
	case <-fired:
		t.Error("cancelled tick fired")
	case <-time.After(100 * time.Millisecond):
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d, want 0", s.Pending())
	}
}
