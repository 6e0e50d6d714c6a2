package game

import "boomshine/internal/game/spatial"

// gridCellSize keeps every trigger/target pair within neighbouring cells.
const gridCellSize = MaxRadius * 2

// Resolver promotes normal circles caught by a chain reaction.
//
// Each pass works in two phases: triggers are collected first, then every
// normal circle touching any of them is promoted exactly once. Circles
// promoted during a pass only start catching others on the next pass, so
// the outcome never depends on slice order.
type Resolver struct {
	grid     *spatial.Grid
	triggers []int
}

// NewResolver creates a resolver for a canvas of the given size.
func NewResolver(b Bounds) *Resolver {
	return &Resolver{
		grid:     spatial.NewGrid(b.Width, b.Height, gridCellSize),
		triggers: make([]int, 0, 16),
	}
}

// Resolve runs one collision pass and returns the indices of circles that
// were promoted to exploding.
func (r *Resolver) Resolve(circles []*Circle) []int {
	r.grid.Clear()
	r.triggers = r.triggers[:0]

	for i, c := range circles {
		switch {
		case c.State == CircleNormal:
			r.grid.Insert(i, c.X, c.Y)
		case c.State.Triggering():
			r.triggers = append(r.triggers, i)
		}
	}
	if len(r.triggers) == 0 || r.grid.Len() == 0 {
		return nil
	}

	var promoted []int
	for _, ti := range r.triggers {
		t := circles[ti]
		for _, ci := range r.grid.QueryRadius(t.X, t.Y, t.Radius+MaxRadius) {
			c := circles[ci]
			if c.State != CircleNormal || !CirclesIntersect(t, c) {
				continue
			}
			c.Detonate()
			promoted = append(promoted, ci)
		}
	}
	return promoted
}

// Settled reports whether no circle is mid-explosion.
func Settled(circles []*Circle) bool {
	for _, c := range circles {
		if c.State.Triggering() {
			return false
		}
	}
	return true
}

// CircleAt returns the index of the topmost normal circle containing (x, y),
// or -1. Later circles are drawn on top, so the scan runs back to front.
func CircleAt(circles []*Circle, x, y float64) int {
	for i := len(circles) - 1; i >= 0; i-- {
		c := circles[i]
		if c.State == CircleNormal && PointInsideCircle(x, y, c) {
			return i
		}
	}
	return -1
}
