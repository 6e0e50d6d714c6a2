// Command terminal runs Boomshine in a terminal with mouse support.
package main

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"time"

	"boomshine/internal/audio"
	"boomshine/internal/config"
	"boomshine/internal/game"
	"boomshine/internal/input"
	"boomshine/internal/render"

	"github.com/gdamore/tcell/v2"
)

const source = "terminal"

type terminal struct {
	screen tcell.Screen
	engine *game.Engine

	canvasW, canvasH float64
	buttonDown       bool
}

func main() {
	config.LoadDotEnv()
	appConfig := config.Load()

	// The screen owns stdout from here on
	if f, err := os.OpenFile("boomshine-terminal.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	player := audio.NewPlayer(appConfig.Audio)
	defer player.Close()

	sessionCfg, err := appConfig.Session(player)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure: %v\n", err)
		os.Exit(1)
	}

	engine := game.NewEngine(game.EngineConfig{
		Session: sessionCfg,
		FPS:     appConfig.Canvas.FPS,
	})
	if path := appConfig.Game.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		}
	}
	defer engine.StopEventLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnableFocus()
	screen.HideCursor()

	t := &terminal{
		screen:  screen,
		engine:  engine,
		canvasW: float64(appConfig.Canvas.Width),
		canvasH: float64(appConfig.Canvas.Height),
	}

	engine.Start()
	defer engine.Stop()

	t.run()
}

func (t *terminal) run() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !t.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			t.draw()
		}
	}
}

func (t *terminal) dispatch(a input.Action) {
	input.Send(t.engine, a, source)
}

// handleEvent returns false when the player quits.
func (t *terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'p' || ev.Rune() == 'P'):
			t.dispatch(input.Action{Kind: input.KindTogglePause})
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'd' || ev.Rune() == 'D'):
			t.dispatch(input.Action{Kind: input.KindToggleDebug})
		case ev.Key() == tcell.KeyUp && ev.Modifiers()&tcell.ModShift != 0:
			t.dispatch(input.Action{Kind: input.KindCheat})
		}

	case *tcell.EventMouse:
		// Act on the press edge only; tcell reports held buttons on every move
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !t.buttonDown {
			col, row := ev.Position()
			cols, rows := t.screen.Size()
			x, y := input.CellToCanvas(col, row, cols, rows, t.canvasW, t.canvasH)
			t.dispatch(input.Click(x, y, source))
		}
		t.buttonDown = down

	case *tcell.EventFocus:
		if !ev.Focused {
			t.dispatch(input.Action{Kind: input.KindPause})
		}

	case *tcell.EventResize:
		t.screen.Sync()
	}

	return true
}

func (t *terminal) draw() {
	snap := t.engine.Snapshot()
	cols, rows := t.screen.Size()

	bg := render.ParseHexColor(render.Background)
	alpha := render.CircleOpacity(snap)
	dim := render.Dimmed(snap)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var c color.RGBA
			if snap.Paused {
				c = color.RGBA{A: 255}
			} else {
				x, y := input.CellToCanvas(col, row, cols, rows, t.canvasW, t.canvasH)
				c = cellColor(snap.Circles, x, y, bg, alpha)
				if dim {
					c = render.Blend(c, color.RGBA{A: 255}, render.OverlayAlpha)
				}
			}
			t.screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(toTcell(c)))
		}
	}

	for _, l := range render.Layout(snap) {
		col, row := input.CanvasToCell(l.X, l.Y, cols, rows, t.canvasW, t.canvasH)
		if l.Anchor == render.AnchorCenter {
			col -= len([]rune(l.Text)) / 2
		}
		t.drawString(col, row, l.Text, toTcell(render.ParseHexColor(l.Color)))
	}

	t.screen.Show()
}

// cellColor is the canvas color at (x, y); later circles draw over earlier ones.
func cellColor(circles []game.CircleSnapshot, x, y float64, bg color.RGBA, alpha float64) color.RGBA {
	c := bg
	for _, circle := range circles {
		dx, dy := x-circle.X, y-circle.Y
		if dx*dx+dy*dy <= circle.Radius*circle.Radius {
			c = render.Blend(c, render.ParseHexColor(circle.Color), alpha)
		}
	}
	return c
}

func (t *terminal) drawString(col, row int, s string, fg tcell.Color) {
	cols, _ := t.screen.Size()
	for _, r := range s {
		if col >= 0 && col < cols {
			_, _, style, _ := t.screen.GetContent(col, row)
			t.screen.SetContent(col, row, r, nil, style.Foreground(fg))
		}
		col++
	}
}

func toTcell(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
