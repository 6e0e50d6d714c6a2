package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"boomshine/internal/config"
	"boomshine/internal/game"

	"github.com/go-chi/chi/v5"
)

// ServerConfig holds everything the API server serves.
type ServerConfig struct {
	Engine   *game.Engine
	Queue    ActionQueue
	Renderer FrameEncoder // optional
	Server   config.ServerConfig
	Limits   config.ResourceLimits
}

// Server is the HTTP API server with WebSocket support.
type Server struct {
	engine      *game.Engine
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter

	mu         sync.Mutex
	httpServer *http.Server
	stopped    bool
}

// NewServer wires the router and WebSocket hub.
//
// Background workers do not start until Start is called, so a constructed
// server can be exercised through Router() with httptest.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		engine: cfg.Engine,
		rateLimiter: NewIPRateLimiter(RateLimitConfig{
			RequestsPerSecond: cfg.Limits.RequestsPerSecond,
			Burst:             cfg.Limits.Burst,
			ActionsPerSecond:  cfg.Limits.ActionsPerSecond,
			ActionBurst:       cfg.Limits.ActionBurst,
			FrameCost:         cfg.Limits.FrameCost,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		}),
	}

	s.wsHub = NewWebSocketHub(cfg.Queue, HubConfig{
		MaxConnectionsTotal: cfg.Limits.MaxWSConnectionsTotal,
		MaxConnectionsPerIP: cfg.Limits.MaxWSConnectionsPerIP,
		BroadcastInterval:   cfg.Server.BroadcastInterval,
		AllowedOrigins:      cfg.Server.CORSOrigins,
	})

	s.router = NewRouter(RouterConfig{
		Engine:      cfg.Engine,
		Queue:       cfg.Queue,
		Renderer:    cfg.Renderer,
		Hub:         s.wsHub,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	return s
}

// Start starts the broadcast loop and serves HTTP on addr until Shutdown.
// Start after Shutdown returns nil without serving.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.httpServer = srv
	s.wsHub.StartBroadcastLoop(s.engine)
	s.mu.Unlock()

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🎯 State: http://localhost%s/api/state", addr)

	// Shutdown may already have run on srv; ListenAndServe then returns ErrServerClosed
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, closes WebSocket clients, and stops the
// rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.httpServer
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.wsHub.Stop()
	s.rateLimiter.Stop()

	log.Println("🛑 API server stopped")
	return err
}
