// Command desktop runs Boomshine in a window with sound.
package main

import (
	"errors"
	"log"

	"boomshine/internal/audio"
	"boomshine/internal/config"
	"boomshine/internal/game"
	"boomshine/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	config.LoadDotEnv()

	appConfig := config.Load()
	canvasCfg := appConfig.Canvas

	player := audio.NewPlayer(appConfig.Audio)
	defer player.Close()

	sessionCfg, err := appConfig.Session(player)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// ebiten's Update loop drives the ticks
	scheduler := game.NewFrameScheduler()
	engine := game.NewEngine(game.EngineConfig{
		Session:   sessionCfg,
		Scheduler: scheduler,
		FPS:       canvasCfg.FPS,
	})
	if appConfig.Game.Debug {
		engine.ToggleDebug()
	}

	if path := appConfig.Game.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		}
	}
	defer engine.StopEventLog()

	fe := newFrontend(engine, scheduler, canvasCfg.Width, canvasCfg.Height, render.LoadFaces(appConfig.Game.FontPath))

	ebiten.SetWindowSize(canvasCfg.Width, canvasCfg.Height)
	ebiten.SetWindowTitle("Boomshine")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(canvasCfg.FPS)

	engine.Start()
	defer engine.Stop()

	if err := ebiten.RunGame(fe); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatalf("❌ %v", err)
	}
	log.Println("👋 Goodbye!")
}
