// Package audio plays the game's sounds through the system speaker with beep.
package audio

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"boomshine/internal/config"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
)

// Player plays the hit effect and the looping background track.
//
// Every method is safe to call when the speaker could not be opened; the
// player is then silent.
type Player struct {
	mu sync.Mutex

	sr    beep.SampleRate
	mixer *beep.Mixer

	// Background track, paused while the round is not being played
	bg       *beep.Ctrl
	bgVolume *effects.Volume
	music    io.Closer

	initialized bool
}

// NewPlayer opens the speaker and prepares the background track. Failures
// are logged and leave the player silent.
func NewPlayer(cfg config.AudioConfig) *Player {
	p := &Player{
		sr:    beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}
	if p.sr <= 0 {
		p.sr = beep.SampleRate(config.DefaultAudio().SampleRate)
	}

	if !cfg.Enabled {
		log.Printf("🔇 Audio disabled")
		return p
	}

	if err := speaker.Init(p.sr, p.sr.N(100*time.Millisecond)); err != nil {
		log.Printf("⚠️ Audio disabled: speaker init: %v", err)
		return p
	}

	track, closer, err := openMusic(cfg.MusicPath, p.sr)
	if err != nil {
		log.Printf("⚠️ Background music unavailable, using drone: %v", err)
		track = NewDroneGenerator(p.sr)
	} else {
		log.Printf("✅ Background music loaded: %s", cfg.MusicPath)
		p.music = closer
	}

	p.bgVolume = withVolume(track, cfg.Volume)
	p.bg = &beep.Ctrl{Streamer: p.bgVolume, Paused: true}
	p.mixer.Add(p.bg)

	speaker.Play(p.mixer)
	p.initialized = true

	log.Printf("🔊 Audio ready at %d Hz", p.sr)
	return p
}

// openMusic decodes an OGG Vorbis file into an endless loop at sr.
func openMusic(path string, sr beep.SampleRate) (beep.Streamer, io.Closer, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("no music path")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open music: %w", err)
	}

	streamer, format, err := vorbis.Decode(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("decode music %s: %w", path, err)
	}

	var track beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != sr {
		log.Printf("   Resampling music from %d Hz to %d Hz", format.SampleRate, sr)
		track = beep.Resample(4, format.SampleRate, sr, track)
	}
	return track, streamer, nil
}

// Enabled reports whether sound actually reaches the speaker.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// PlayEffect fires one hit blip. Overlapping blips are mixed.
func (p *Player) PlayEffect() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	speaker.Lock()
	p.mixer.Add(NewBlip(p.sr))
	speaker.Unlock()
}

// PlayBGAudio resumes the background track where it stopped.
func (p *Player) PlayBGAudio() {
	p.setBGPaused(false)
}

// StopBGAudio pauses the background track.
func (p *Player) StopBGAudio() {
	p.setBGPaused(true)
}

func (p *Player) setBGPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.bg == nil {
		return
	}

	speaker.Lock()
	p.bg.Paused = paused
	speaker.Unlock()
}

// SetVolume sets the background volume (0.0 to 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.bgVolume == nil {
		return
	}

	speaker.Lock()
	if v <= 0 {
		p.bgVolume.Silent = true
	} else {
		p.bgVolume.Silent = false
		p.bgVolume.Volume = math.Log2(math.Min(v, 1))
	}
	speaker.Unlock()
}

// Close stops all sound and releases the speaker.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}
	p.initialized = false

	speaker.Clear()
	speaker.Close()

	if p.music != nil {
		if err := p.music.Close(); err != nil {
			return fmt.Errorf("close music: %w", err)
		}
	}
	return nil
}
