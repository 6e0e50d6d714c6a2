package game

import (
	"math"
	"math/rand"
)

// RandomRange returns a uniformly distributed value in [min, max).
func RandomRange(rng *rand.Rand, min, max float64) float64 {
	return rng.Float64()*(max-min) + min
}

// RandomUnitVector returns a random direction with length 1.
func RandomUnitVector(rng *rand.Rand) (x, y float64) {
	x = RandomRange(rng, -1, 1)
	y = RandomRange(rng, -1, 1)

	length := math.Hypot(x, y)
	if length == 0 {
		return 1, 0
	}
	return x / length, y / length
}

// CirclesIntersect reports whether two circles touch or overlap.
func CirclesIntersect(a, b *Circle) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	rr := a.Radius + b.Radius
	return dx*dx+dy*dy <= rr*rr
}

// PointInsideCircle reports whether (x, y) lies within c.
func PointInsideCircle(x, y float64, c *Circle) bool {
	dx := x - c.X
	dy := y - c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Clamp restricts v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
