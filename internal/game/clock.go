package game

import (
	"math"
	"time"
)

// Frame-rate bounds for delta-time derivation.
const (
	DefaultMinFPS = 12.0
	DefaultMaxFPS = 60.0
)

// DeltaClock turns wall-clock tick times into a bounded simulation step.
//
// The frame rate derived from the elapsed time is clamped to [MinFPS, MaxFPS],
// so the returned dt always lies in [1/MaxFPS, 1/MinFPS]. A first tick, a
// non-positive elapsed time, or NaN all count as a MaxFPS frame.
type DeltaClock struct {
	MinFPS float64
	MaxFPS float64

	last    time.Time
	hasLast bool
	lastDT  float64
}

// NewDeltaClock creates a clock with the given fps bounds. Non-positive or
// inverted bounds fall back to the defaults.
func NewDeltaClock(minFPS, maxFPS float64) *DeltaClock {
	if minFPS <= 0 || maxFPS <= 0 || minFPS > maxFPS {
		minFPS, maxFPS = DefaultMinFPS, DefaultMaxFPS
	}
	return &DeltaClock{MinFPS: minFPS, MaxFPS: maxFPS}
}

// Tick records now and returns the step since the previous tick in seconds.
func (c *DeltaClock) Tick(now time.Time) float64 {
	elapsed := 0.0
	if c.hasLast {
		elapsed = now.Sub(c.last).Seconds()
	}
	c.last = now
	c.hasLast = true

	c.lastDT = c.Step(elapsed)
	return c.lastDT
}

// Step converts an elapsed time in seconds into a clamped step.
func (c *DeltaClock) Step(elapsed float64) float64 {
	fps := c.MaxFPS
	if elapsed > 0 && !math.IsNaN(elapsed) {
		fps = Clamp(1/elapsed, c.MinFPS, c.MaxFPS)
	}
	return 1 / fps
}

// Reset forgets the previous tick so the next one starts a fresh measurement.
func (c *DeltaClock) Reset() {
	c.hasLast = false
	c.last = time.Time{}
}

// LastDT returns the most recent step.
func (c *DeltaClock) LastDT() float64 {
	return c.lastDT
}
