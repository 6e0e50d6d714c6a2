package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Canvas.Width != 640 || cfg.Canvas.Height != 480 {
		t.Errorf("canvas = %dx%d, want 640x480", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Canvas.MinFPS != 12 || cfg.Canvas.MaxFPS != 60 {
		t.Errorf("fps clamp = [%d, %d], want [12, 60]", cfg.Canvas.MinFPS, cfg.Canvas.MaxFPS)
	}
	if cfg.Server.Port != 3000 || cfg.Server.BroadcastInterval != 100*time.Millisecond {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Audio.Enabled || cfg.Audio.Volume != 0.15 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Game.EventLogPath != "events.jsonl" {
		t.Errorf("event log path = %q", cfg.Game.EventLogPath)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CANVAS_WIDTH", "800")
	t.Setenv("CANVAS_HEIGHT", "600")
	t.Setenv("TICK_FPS", "30")
	t.Setenv("PORT", "8080")
	t.Setenv("BROADCAST_MS", "250")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("MUSIC_VOLUME", "0.5")
	t.Setenv("MUSIC_ENABLED", "false")
	t.Setenv("MUSIC_PATH", "/tmp/song.ogg")
	t.Setenv("LEVELS_PATH", "levels.toml")
	t.Setenv("GAME_SEED", "42")
	t.Setenv("EVENT_LOG_PATH", "")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 || cfg.Canvas.FPS != 30 {
		t.Errorf("canvas = %+v", cfg.Canvas)
	}
	if cfg.Server.Port != 8080 || cfg.Server.BroadcastInterval != 250*time.Millisecond {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Audio.Volume != 0.5 || cfg.Audio.Enabled || cfg.Audio.MusicPath != "/tmp/song.ogg" {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Game.LevelsPath != "levels.toml" || cfg.Game.Seed != 42 || cfg.Game.EventLogPath != "" || !cfg.Game.Debug {
		t.Errorf("game = %+v", cfg.Game)
	}
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("CANVAS_WIDTH", "wide")
	t.Setenv("MUSIC_VOLUME", "7")
	t.Setenv("GAME_SEED", "x")

	cfg := Load()
	if cfg.Canvas.Width != 640 {
		t.Errorf("width = %d, want default", cfg.Canvas.Width)
	}
	if cfg.Audio.Volume != 0.15 {
		t.Errorf("volume = %v, want default", cfg.Audio.Volume)
	}
	if cfg.Game.Seed != 0 {
		t.Errorf("seed = %d, want 0", cfg.Game.Seed)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BOOMSHINE_TEST_KEY=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("BOOMSHINE_TEST_KEY") })

	got := LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	if got != path {
		t.Errorf("loaded %q, want %q", got, path)
	}
	if os.Getenv("BOOMSHINE_TEST_KEY") != "loaded" {
		t.Error("variable from .env not set")
	}

	if LoadDotEnv(filepath.Join(dir, "nope")) != "" {
		t.Error("missing file reported as loaded")
	}
}
