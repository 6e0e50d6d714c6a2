package game

import "math/rand"

// MakeCircles spawns n normal circles at random positions inside b, keeping a
// margin of two start radii from every wall. Colors cycle through Palette.
func MakeCircles(n int, b Bounds, rng *rand.Rand) []*Circle {
	margin := StartRadius * 2
	circles := make([]*Circle, 0, n)

	for i := 0; i < n; i++ {
		x := RandomRange(rng, margin, b.Width-margin)
		y := RandomRange(rng, margin, b.Height-margin)
		dx, dy := RandomUnitVector(rng)

		circles = append(circles, NewCircle(x, y, dx, dy, Palette[i%len(Palette)]))
	}

	return circles
}
