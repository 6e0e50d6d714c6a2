package game

import "testing"

var testBounds = Bounds{Width: 640, Height: 480}

const frameDT = 1.0 / 60

func TestCircleLifecycleIsMonotonic(t *testing.T) {
	c := NewCircle(320, 240, 0.6, 0.8, Palette[0])
	if !c.Detonate() {
		t.Fatal("Detonate on a normal circle returned false")
	}

	seen := []CircleState{c.State}
	for i := 0; i < 1000 && c.State != CircleDone; i++ {
		prev := c.State
		c.Update(frameDT, testBounds)
		if c.State < prev {
			t.Fatalf("state went backwards: %s -> %s", prev, c.State)
		}
		if c.State > prev+1 {
			t.Fatalf("state skipped a stage: %s -> %s", prev, c.State)
		}
		if c.State != prev {
			seen = append(seen, c.State)
		}
	}

	want := []CircleState{CircleExploding, CircleMaxSize, CircleImploding, CircleDone}
	if len(seen) != len(want) {
		t.Fatalf("stages = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestDetonateOnlyFromNormal(t *testing.T) {
	c := NewCircle(100, 100, 1, 0, Palette[1])
	c.Detonate()

	if c.XSpeed != 0 || c.YSpeed != 0 {
		t.Errorf("speed after Detonate = (%v, %v), want zero", c.XSpeed, c.YSpeed)
	}
	if c.State != CircleExploding {
		t.Errorf("state = %s, want exploding", c.State)
	}
	if c.Detonate() {
		t.Error("second Detonate returned true")
	}
}

func TestNonNormalCirclesDoNotMove(t *testing.T) {
	for _, state := range []CircleState{CircleExploding, CircleMaxSize, CircleImploding} {
		t.Run(state.String(), func(t *testing.T) {
			c := NewCircle(200, 150, 0.6, 0.8, Palette[2])
			c.State = state
			c.Radius = 20
			c.Update(frameDT, testBounds)

			if c.X != 200 || c.Y != 150 {
				t.Errorf("position = (%v, %v), want (200, 150)", c.X, c.Y)
			}
		})
	}
}

func TestDoneCircleIsInvariant(t *testing.T) {
	c := NewCircle(50, 60, 0.6, 0.8, Palette[3])
	c.State = CircleDone
	c.Radius = 1.5
	before := *c

	for i := 0; i < 100; i++ {
		c.Update(frameDT, testBounds)
	}

	if *c != before {
		t.Errorf("done circle changed: %+v -> %+v", before, *c)
	}
}

func TestBoundaryReflection(t *testing.T) {
	tests := []struct {
		name       string
		x, y       float64
		dirX, dirY float64
		wantXSign  float64
		wantYSign  float64
	}{
		{"left wall", 5, 240, -1, 0, 1, 0},
		{"right wall", 636, 240, 1, 0, -1, 0},
		{"top wall", 320, 4, 0, -1, 0, 1},
		{"bottom wall", 320, 477, 0, 1, 0, -1},
		{"corner", 3, 3, -0.6, -0.8, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCircle(tt.x, tt.y, tt.dirX, tt.dirY, Palette[4])
			c.Update(frameDT, testBounds)

			if c.XSpeed*tt.wantXSign < 0 || c.YSpeed*tt.wantYSign < 0 {
				t.Errorf("direction after bounce = (%v, %v)", c.XSpeed, c.YSpeed)
			}
			if c.X < 0 || c.X > testBounds.Width || c.Y < 0 || c.Y > testBounds.Height {
				t.Errorf("position (%v, %v) left the canvas", c.X, c.Y)
			}
		})
	}
}

func TestCircleHeadingInwardIsNotFlippedAgain(t *testing.T) {
	c := NewCircle(5, 240, -1, 0, Palette[5])
	c.Update(frameDT, testBounds)
	if c.XSpeed <= 0 {
		t.Fatalf("XSpeed after bounce = %v, want positive", c.XSpeed)
	}

	// Still inside the wall band but moving away from it
	c.Update(frameDT, testBounds)
	if c.XSpeed <= 0 {
		t.Errorf("XSpeed flipped back to %v while leaving the wall", c.XSpeed)
	}
}

func TestCirclesStayOnCanvas(t *testing.T) {
	circles := MakeCircles(40, testBounds, newTestRand())
	for tick := 0; tick < 2000; tick++ {
		for _, c := range circles {
			c.Update(1.0/30, testBounds)
			if c.X < 0 || c.X > testBounds.Width || c.Y < 0 || c.Y > testBounds.Height {
				t.Fatalf("tick %d: circle at (%v, %v) left the canvas", tick, c.X, c.Y)
			}
		}
	}
}

func TestMakeCircles(t *testing.T) {
	circles := MakeCircles(20, testBounds, newTestRand())
	if len(circles) != 20 {
		t.Fatalf("len = %d, want 20", len(circles))
	}

	margin := StartRadius * 2
	for i, c := range circles {
		if c.X < margin || c.X > testBounds.Width-margin || c.Y < margin || c.Y > testBounds.Height-margin {
			t.Errorf("circle %d at (%v, %v) is inside the spawn margin", i, c.X, c.Y)
		}
		if c.Color() != Palette[i%len(Palette)] {
			t.Errorf("circle %d color = %s, want %s", i, c.Color(), Palette[i%len(Palette)])
		}
		if c.State != CircleNormal || c.Radius != StartRadius || c.Speed != MaxSpeed {
			t.Errorf("circle %d not a fresh normal circle: %+v", i, *c)
		}
	}
}
