package api

import (
	"io"
	"net/http"

	"boomshine/internal/game"
	"boomshine/internal/input"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface is the read side of the game engine the API needs.
// Writes go through the input queue, never directly to the engine.
type EngineInterface interface {
	// Snapshot returns a private copy of the latest published frame
	Snapshot() game.GameSnapshot
	// Levels returns the level table in play
	Levels() []game.LevelSpec
	// TickCount returns the number of simulated ticks
	TickCount() uint64
	// EventLogStats returns event log counters
	EventLogStats() game.EventLogStats
}

// ActionQueue accepts player actions without blocking.
type ActionQueue interface {
	Enqueue(input.Action) bool
	Stats() input.QueueStats
}

// FrameEncoder renders a snapshot as PNG.
type FrameEncoder interface {
	EncodePNG(w io.Writer, snap game.GameSnapshot) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine: mockEngine,
//	    Queue:  mockQueue,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Queue receives clicks and other actions (required)
	Queue ActionQueue

	// Renderer serves /api/frame.png. If nil the endpoint answers 503.
	Renderer FrameEncoder

	// Hub serves /ws. If nil the route is not mounted.
	Hub *WebSocketHub

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to DefaultCORSOrigins
	CORSOrigins []string

	// DisableLogging disables the request logger middleware.
	DisableLogging bool
}

type routerHandlers struct {
	engine      EngineInterface
	queue       ActionQueue
	renderer    FrameEncoder
	hub         *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// It starts no goroutines of its own and opens no listeners, so it is safe to
// use with httptest.NewServer. A limiter created here from RateLimitConfig
// runs its cleanup loop until the process exits; pass RateLimiter to own it.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting before CORS so floods are rejected early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = DefaultCORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := &routerHandlers{
		engine:      cfg.Engine,
		queue:       cfg.Queue,
		renderer:    cfg.Renderer,
		hub:         cfg.Hub,
		rateLimiter: rateLimiter,
	}

	r.Route("/api", func(r chi.Router) {
		// Read side
		r.Get("/state", h.handleGetState)
		r.Get("/levels", h.handleGetLevels)
		r.Get("/stats", h.handleGetStats)
		r.Get("/frame.png", h.handleGetFrame)

		// Player input
		r.Post("/click", h.handleClick)
		r.Post("/pause", h.handleSimpleAction(input.KindPause))
		r.Post("/resume", h.handleSimpleAction(input.KindResume))
		r.Post("/debug", h.handleSimpleAction(input.KindToggleDebug))
		r.Post("/action", h.handleAction)
	})

	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}
