// Package config holds every tunable setting of the game host and frontends.
//
// Each section has a Default* constructor with the built-in values and a
// *FromEnv constructor that applies environment overrides on top.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// CANVAS CONFIGURATION
// =============================================================================

// CanvasConfig holds the play-field size and frame timing.
type CanvasConfig struct {
	Width  int // Canvas width in pixels
	Height int // Canvas height in pixels
	FPS    int // Scheduler tick rate
	MinFPS int // Lower clamp for delta-time derivation
	MaxFPS int // Upper clamp for delta-time derivation
}

// DefaultCanvas returns the default canvas configuration.
func DefaultCanvas() CanvasConfig {
	return CanvasConfig{
		Width:  640,
		Height: 480,
		FPS:    60,
		MinFPS: 12,
		MaxFPS: 60,
	}
}

// CanvasFromEnv returns canvas configuration with environment overrides.
func CanvasFromEnv() CanvasConfig {
	cfg := DefaultCanvas()

	if w := getEnvInt("CANVAS_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("CANVAS_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if fps := getEnvInt("TICK_FPS", 0); fps > 0 {
		cfg.FPS = fps
	}

	return cfg
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds audio mixer settings.
type AudioConfig struct {
	SampleRate int     // Output sample rate in Hz
	Volume     float64 // Background music volume (0.0 to 1.0)
	Enabled    bool    // Whether any sound is played
	MusicPath  string  // OGG file looped as background music
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.15,
		Enabled:    true,
		MusicPath:  "assets/music/background.ogg",
	}
}

// AudioFromEnv returns audio configuration with environment overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("MUSIC_VOLUME", -1); v >= 0 && v <= 1 {
		cfg.Volume = v
	}
	if os.Getenv("MUSIC_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if p := os.Getenv("MUSIC_PATH"); p != "" {
		cfg.MusicPath = p
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int
	BroadcastInterval time.Duration // WebSocket snapshot push interval
	CORSOrigins       []string      // nil uses the router defaults
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:              3000,
		BroadcastInterval: 100 * time.Millisecond,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if ms := getEnvInt("BROADCAST_MS", 0); ms > 0 {
		cfg.BroadcastInterval = time.Duration(ms) * time.Millisecond
	}
	if origins := getEnvList("CORS_ORIGINS"); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}

	return cfg
}

// =============================================================================
// GAME CONFIGURATION
// =============================================================================

// GameConfig holds gameplay and diagnostics settings.
type GameConfig struct {
	LevelsPath   string // Optional TOML level table, empty uses the built-in table
	Seed         int64  // RNG seed, 0 seeds from the clock
	EventLogPath string // JSONL event log, empty disables it
	Debug        bool   // Start with the delta-time overlay on
	FontPath     string // HUD font, empty searches the usual locations
}

// DefaultGame returns the default game configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		EventLogPath: "events.jsonl",
	}
}

// GameFromEnv returns game configuration with environment overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	cfg.LevelsPath = os.Getenv("LEVELS_PATH")
	if v := os.Getenv("GAME_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	if p, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = p
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	cfg.FontPath = os.Getenv("FONT_PATH")

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits bounds what remote clients can cost the host.
type ResourceLimits struct {
	InputQueueSize        int     // Pending actions before new ones are dropped
	MaxWSConnectionsTotal int     // WebSocket clients across all IPs
	MaxWSConnectionsPerIP int     // WebSocket clients per IP
	RequestsPerSecond     float64 // HTTP reads per IP
	Burst                 int     // HTTP read burst per IP
	ActionsPerSecond      float64 // clicks and other inputs per IP
	ActionBurst           int     // input burst per IP
	FrameCost             int     // read tokens one rendered frame takes
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		InputQueueSize:        256,
		MaxWSConnectionsTotal: 500,
		MaxWSConnectionsPerIP: 10,
		RequestsPerSecond:     20,
		Burst:                 40,
		ActionsPerSecond:      10,
		ActionBurst:           10,
		FrameCost:             5,
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Canvas CanvasConfig
	Audio  AudioConfig
	Server ServerConfig
	Game   GameConfig
	Limits ResourceLimits
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Canvas: CanvasFromEnv(),
		Audio:  AudioFromEnv(),
		Server: ServerFromEnv(),
		Game:   GameFromEnv(),
		Limits: DefaultLimits(),
	}
}

// LoadDotEnv loads the first .env file that exists among paths (default
// "../.env" then ".env"). A missing file is not an error. Returns the path
// loaded, or "".
func LoadDotEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = []string{"../.env", ".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			log.Printf("✅ Loaded environment from %s", p)
			return p
		}
	}
	log.Println("💡 No .env file found, using environment variables only")
	return ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
