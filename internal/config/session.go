package config

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"boomshine/internal/game"
)

// Session builds the game session settings every frontend starts from.
// A configured level file that fails to load is an error, not a fallback.
func (c AppConfig) Session(audio game.Audio) (game.SessionConfig, error) {
	levels := game.Levels()
	if c.Game.LevelsPath != "" {
		loaded, err := game.LoadLevels(c.Game.LevelsPath)
		if err != nil {
			return game.SessionConfig{}, fmt.Errorf("load levels: %w", err)
		}
		levels = loaded
		log.Printf("🗺️ Loaded %d levels from %s", len(levels), c.Game.LevelsPath)
	}

	seed := c.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		log.Printf("🎲 Fixed seed %d", seed)
	}

	return game.SessionConfig{
		Bounds: game.Bounds{
			Width:  float64(c.Canvas.Width),
			Height: float64(c.Canvas.Height),
		},
		Levels: levels,
		Audio:  audio,
		Rand:   rand.New(rand.NewSource(seed)),
		MinFPS: float64(c.Canvas.MinFPS),
		MaxFPS: float64(c.Canvas.MaxFPS),
	}, nil
}
