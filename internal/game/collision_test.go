package game

import (
	"math/rand"
	"sort"
	"testing"
)

func exploding(x, y, radius float64) *Circle {
	c := NewCircle(x, y, 0, 0, Palette[0])
	c.Detonate()
	c.Radius = radius
	return c
}

func still(x, y float64) *Circle {
	return NewCircle(x, y, 0, 0, Palette[1])
}

func TestResolvePromotesTouchingNormals(t *testing.T) {
	circles := []*Circle{
		exploding(100, 100, MaxRadius),
		still(140, 100), // touching
		still(300, 300), // far away
	}

	got := NewResolver(testBounds).Resolve(circles)

	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("promoted = %v, want [1]", got)
	}
	if circles[1].State != CircleExploding || circles[1].XSpeed != 0 || circles[1].YSpeed != 0 {
		t.Errorf("promoted circle = %+v, want stopped and exploding", *circles[1])
	}
	if circles[2].State != CircleNormal {
		t.Errorf("far circle state = %s, want normal", circles[2].State)
	}
}

func TestResolveIsOrderIndependent(t *testing.T) {
	// b touches the trigger, c only touches b
	build := func() (a, b, c *Circle) {
		return exploding(100, 100, MaxRadius), still(145, 100), still(158, 100)
	}

	orders := map[string]func(a, b, c *Circle) []*Circle{
		"abc": func(a, b, c *Circle) []*Circle { return []*Circle{a, b, c} },
		"cba": func(a, b, c *Circle) []*Circle { return []*Circle{c, b, a} },
		"bca": func(a, b, c *Circle) []*Circle { return []*Circle{b, c, a} },
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			a, b, c := build()
			r := NewResolver(testBounds)

			if got := r.Resolve(order(a, b, c)); len(got) != 1 {
				t.Fatalf("first pass promoted %d circles, want 1", len(got))
			}
			if b.State != CircleExploding || c.State != CircleNormal {
				t.Fatalf("after first pass b=%s c=%s, want exploding/normal", b.State, c.State)
			}

			if got := r.Resolve(order(a, b, c)); len(got) != 1 {
				t.Fatalf("second pass promoted %d circles, want 1", len(got))
			}
			if c.State != CircleExploding {
				t.Errorf("c = %s after second pass, want exploding", c.State)
			}
		})
	}
}

func TestResolveIgnoresDoneCircles(t *testing.T) {
	done := still(110, 100)
	done.State = CircleDone
	deadTrigger := exploding(300, 300, MaxRadius)
	deadTrigger.State = CircleDone

	circles := []*Circle{exploding(100, 100, MaxRadius), done, deadTrigger, still(310, 300)}
	got := NewResolver(testBounds).Resolve(circles)

	if len(got) != 0 {
		t.Errorf("promoted = %v, want none", got)
	}
	if done.State != CircleDone || circles[3].State != CircleNormal {
		t.Errorf("states = %s/%s, want done/normal", done.State, circles[3].State)
	}
}

func TestResolveCatchesEachCircleOnce(t *testing.T) {
	circles := []*Circle{
		exploding(100, 100, MaxRadius),
		exploding(130, 100, MaxRadius),
		still(115, 100), // inside both triggers
	}

	got := NewResolver(testBounds).Resolve(circles)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("promoted = %v, want [2]", got)
	}
}

// bruteForce is the plain pairwise pass the grid must agree with.
func bruteForce(circles []*Circle) []int {
	var triggers []*Circle
	for _, c := range circles {
		if c.State.Triggering() {
			triggers = append(triggers, c)
		}
	}
	var out []int
	for i, c := range circles {
		if c.State != CircleNormal {
			continue
		}
		for _, tr := range triggers {
			if CirclesIntersect(tr, c) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

func cloneCircles(circles []*Circle) []*Circle {
	out := make([]*Circle, len(circles))
	for i, c := range circles {
		cp := *c
		out[i] = &cp
	}
	return out
}

func TestResolveMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		circles := MakeCircles(40, testBounds, rng)
		for _, c := range circles {
			switch rng.Intn(4) {
			case 0:
				c.Detonate()
				c.Radius = RandomRange(rng, StartRadius, MaxRadius)
			case 1:
				c.State = CircleDone
			}
		}

		want := bruteForce(cloneCircles(circles))
		got := NewResolver(testBounds).Resolve(circles)
		sort.Ints(got)

		if len(got) != len(want) {
			t.Fatalf("round %d: promoted %v, want %v", round, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("round %d: promoted %v, want %v", round, got, want)
			}
		}
	}
}

func TestSettled(t *testing.T) {
	done := still(0, 0)
	done.State = CircleDone

	if !Settled([]*Circle{still(10, 10), done}) {
		t.Error("normal and done circles should be settled")
	}
	if !Settled(nil) {
		t.Error("no circles should be settled")
	}
	for _, state := range []CircleState{CircleExploding, CircleMaxSize, CircleImploding} {
		c := still(10, 10)
		c.State = state
		if Settled([]*Circle{done, c}) {
			t.Errorf("%s circle should not be settled", state)
		}
	}
}

func TestCircleAtPrefersTopmost(t *testing.T) {
	circles := []*Circle{still(100, 100), still(104, 100), still(400, 400)}

	if got := CircleAt(circles, 102, 100); got != 1 {
		t.Errorf("CircleAt overlap = %d, want 1 (last inserted)", got)
	}
	if got := CircleAt(circles, 95, 100); got != 0 {
		t.Errorf("CircleAt = %d, want 0", got)
	}
	if got := CircleAt(circles, 250, 250); got != -1 {
		t.Errorf("CircleAt miss = %d, want -1", got)
	}
}
