package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"boomshine/internal/api"
	"boomshine/internal/config"
	"boomshine/internal/game"
	"boomshine/internal/input"
	"boomshine/internal/render"
)

func main() {
	config.LoadDotEnv()

	log.Println("🎮 ================================")
	log.Println("🎮  BOOMSHINE - GAME HOST")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	canvasCfg := appConfig.Canvas
	serverCfg := appConfig.Server

	log.Printf("🎮 Config: %dx%d canvas, %d TPS, dt clamp [%d, %d] fps",
		canvasCfg.Width, canvasCfg.Height, canvasCfg.FPS, canvasCfg.MinFPS, canvasCfg.MaxFPS)

	// The host has no speakers; sound belongs to the frontends
	sessionCfg, err := appConfig.Session(game.NopAudio{})
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	engine := game.NewEngine(game.EngineConfig{
		Session: sessionCfg,
		FPS:     canvasCfg.FPS,
	})
	api.ObserveEngine(engine)
	if appConfig.Game.Debug {
		engine.ToggleDebug()
	}

	if path := appConfig.Game.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", path)
		}
	}

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	queue := input.NewQueue(engine, input.QueueConfig{BufferSize: appConfig.Limits.InputQueueSize})
	queue.OnDrop = api.RecordInputDropped

	renderer := render.NewFrameRenderer(canvasCfg.Width, canvasCfg.Height, appConfig.Game.FontPath)

	server := api.NewServer(api.ServerConfig{
		Engine:   engine,
		Queue:    queue,
		Renderer: renderer,
		Server:   serverCfg,
		Limits:   appConfig.Limits,
	})

	queue.Start()
	engine.Start()
	log.Println("✅ Game engine started")

	go func() {
		if err := server.Start(":" + strconv.Itoa(serverCfg.Port)); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
	queue.Stop()
	engine.Stop()
	engine.StopEventLog()
	log.Println("👋 Goodbye!")
}
