package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Effect tuning
const (
	BlipFrequency = 660.0
	BlipDuration  = 120 * time.Millisecond
	blipDecay     = 30.0
)

// decay fades a stream out exponentially.
type decay struct {
	streamer beep.Streamer
	sr       beep.SampleRate
	rate     float64
	pos      int
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		t := float64(d.pos) / float64(d.sr)
		env := math.Exp(-t * d.rate)
		samples[i][0] *= env
		samples[i][1] *= env
		d.pos++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// NewBlip returns the short decaying sine played on every circle hit.
func NewBlip(sr beep.SampleRate) beep.Streamer {
	tone, err := generators.SineTone(sr, BlipFrequency)
	if err != nil {
		return generators.Silence(sr.N(BlipDuration))
	}
	return beep.Take(sr.N(BlipDuration), &decay{streamer: tone, sr: sr, rate: blipDecay})
}

// DroneGenerator is the background loop used when no music file is present:
// two detuned low sines under a slow swell. It never ends.
type DroneGenerator struct {
	sr     beep.SampleRate
	pos    int
	period int
}

// NewDroneGenerator creates a drone with an 8 second swell.
func NewDroneGenerator(sr beep.SampleRate) *DroneGenerator {
	return &DroneGenerator{
		sr:     sr,
		period: sr.N(8 * time.Second),
	}
}

func (g *DroneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		cycle := float64(g.pos%g.period) / float64(g.period)

		swell := 0.6 + 0.4*math.Sin(2*math.Pi*cycle)
		left := math.Sin(2*math.Pi*110*t) + 0.5*math.Sin(2*math.Pi*164.8*t)
		right := math.Sin(2*math.Pi*110.5*t) + 0.5*math.Sin(2*math.Pi*165.3*t)

		samples[i][0] = 0.2 * swell * left
		samples[i][1] = 0.2 * swell * right
		g.pos++
	}
	return len(samples), true
}

func (g *DroneGenerator) Err() error {
	return nil
}

// withVolume scales s by a linear volume in [0, 1].
func withVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
