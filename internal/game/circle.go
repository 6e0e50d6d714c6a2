package game

// CircleState is the lifecycle stage of a circle. Stages only move forward.
type CircleState uint8

const (
	CircleNormal CircleState = iota
	CircleExploding
	CircleMaxSize
	CircleImploding
	CircleDone
)

// String returns the lowercase stage name
func (s CircleState) String() string {
	switch s {
	case CircleNormal:
		return "normal"
	case CircleExploding:
		return "exploding"
	case CircleMaxSize:
		return "max_size"
	case CircleImploding:
		return "imploding"
	case CircleDone:
		return "done"
	default:
		return "unknown"
	}
}

// Triggering reports whether a circle in this stage can catch normal circles.
func (s CircleState) Triggering() bool {
	return s == CircleExploding || s == CircleMaxSize || s == CircleImploding
}

// Circle tuning. Speeds are in pixels per second, lifetime in seconds.
const (
	StartRadius    = 8.0
	MaxRadius      = 45.0
	MinRadius      = 2.0
	MaxLifetime    = 2.5
	MaxSpeed       = 80.0
	ExplosionSpeed = 60.0
	ImplosionSpeed = 84.0
)

// Palette is cycled by spawn index to color circles.
var Palette = [...]string{
	"#FD5B78", "#FF6037", "#FF9966", "#FFFF66",
	"#66FF66", "#50BFE6", "#FF6EFF", "#EE34D2",
}

// Bounds is the canvas a circle bounces inside.
type Bounds struct {
	Width  float64
	Height float64
}

// Circle is a single drifting target.
type Circle struct {
	X, Y     float64
	Radius   float64
	XSpeed   float64 // unit direction component
	YSpeed   float64 // unit direction component
	Speed    float64
	State    CircleState
	Lifetime float64 // seconds spent at max size

	color string
}

// NewCircle creates a normal circle. The color is fixed for the circle's life.
func NewCircle(x, y, dirX, dirY float64, color string) *Circle {
	return &Circle{
		X:      x,
		Y:      y,
		Radius: StartRadius,
		XSpeed: dirX,
		YSpeed: dirY,
		Speed:  MaxSpeed,
		State:  CircleNormal,
		color:  color,
	}
}

// Color returns the fill color given at creation.
func (c *Circle) Color() string {
	return c.color
}

// Detonate stops the circle and starts its explosion.
// Returns false if the circle had already left the normal stage.
func (c *Circle) Detonate() bool {
	if c.State != CircleNormal {
		return false
	}
	c.XSpeed, c.YSpeed = 0, 0
	c.State = CircleExploding
	return true
}

func (c *Circle) move(dt float64) {
	c.X += c.XSpeed * c.Speed * dt
	c.Y += c.YSpeed * c.Speed * dt
}

// hitLeftRight reports contact with a side wall the circle is moving into.
func (c *Circle) hitLeftRight(b Bounds) bool {
	return (c.X <= c.Radius && c.XSpeed < 0) || (c.X >= b.Width-c.Radius && c.XSpeed > 0)
}

// hitTopBottom reports contact with the top or bottom wall the circle is moving into.
func (c *Circle) hitTopBottom(b Bounds) bool {
	return (c.Y < c.Radius && c.YSpeed < 0) || (c.Y > b.Height-c.Radius && c.YSpeed > 0)
}

// Update advances the circle by dt seconds. Done circles are left untouched.
func (c *Circle) Update(dt float64, b Bounds) {
	switch c.State {
	case CircleDone:
		return

	case CircleExploding:
		c.Radius += ExplosionSpeed * dt
		if c.Radius >= MaxRadius {
			c.State = CircleMaxSize
		}

	case CircleMaxSize:
		c.Lifetime += dt
		if c.Lifetime >= MaxLifetime {
			c.State = CircleImploding
		}

	case CircleImploding:
		c.Radius -= ImplosionSpeed * dt
		if c.Radius <= MinRadius {
			c.State = CircleDone
		}

	case CircleNormal:
		c.move(dt)

		// Reverse at the wall and reapply the move so the circle doesn't sink into it
		if c.hitLeftRight(b) {
			c.XSpeed = -c.XSpeed
			c.move(dt)
		}
		if c.hitTopBottom(b) {
			c.YSpeed = -c.YSpeed
			c.move(dt)
		}
	}
}
