package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"boomshine/internal/game"
)

func TestSessionDefaults(t *testing.T) {
	cfg := AppConfig{Canvas: DefaultCanvas(), Game: DefaultGame()}

	sc, err := cfg.Session(nil)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sc.Bounds.Width != 640 || sc.Bounds.Height != 480 {
		t.Errorf("bounds = %+v", sc.Bounds)
	}
	if len(sc.Levels) != game.FinalLevel {
		t.Errorf("levels = %d, want %d", len(sc.Levels), game.FinalLevel)
	}
	if sc.MinFPS != 12 || sc.MaxFPS != 60 || sc.Rand == nil {
		t.Errorf("session config = %+v", sc)
	}
}

func TestSessionSeedIsDeterministic(t *testing.T) {
	cfg := AppConfig{Canvas: DefaultCanvas(), Game: GameConfig{Seed: 99}}

	a, _ := cfg.Session(nil)
	b, _ := cfg.Session(nil)
	if a.Rand.Int63() != b.Rand.Int63() {
		t.Error("same seed should give the same sequence")
	}
}

func TestSessionLevelsFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.toml")
	os.WriteFile(good, []byte("[[level]]\ntarget = 1\ncircles = 2\nwin = \"yay\"\nfail = \"nay\"\n"), 0o644)

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[[level]]\ntarget = 5\ncircles = 2\n"), 0o644)

	cfg := AppConfig{Canvas: DefaultCanvas(), Game: GameConfig{LevelsPath: good}}
	sc, err := cfg.Session(nil)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if len(sc.Levels) != 1 || sc.Levels[0].WinMessage != "yay" {
		t.Errorf("levels = %+v", sc.Levels)
	}

	cfg.Game.LevelsPath = bad
	if _, err := cfg.Session(nil); !errors.Is(err, game.ErrInvalidLevel) {
		t.Errorf("err = %v, want ErrInvalidLevel", err)
	}
}
