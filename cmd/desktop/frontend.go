package main

import (
	"image/color"
	"time"

	"boomshine/internal/game"
	"boomshine/internal/input"
	"boomshine/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const source = "desktop"

// frontend adapts the engine to ebiten. The canvas is drawn offscreen at its
// native size and scaled into the window, letterboxed.
type frontend struct {
	engine    *game.Engine
	scheduler *game.FrameScheduler
	faces     render.Faces

	canvas   *ebiten.Image
	viewport input.Viewport
	width    int
	height   int

	focused bool
}

func newFrontend(engine *game.Engine, scheduler *game.FrameScheduler, width, height int, faces render.Faces) *frontend {
	return &frontend{
		engine:    engine,
		scheduler: scheduler,
		faces:     faces,
		canvas:    ebiten.NewImage(width, height),
		viewport:  input.Viewport{Scale: 1},
		width:     width,
		height:    height,
		focused:   true,
	}
}

func (f *frontend) dispatch(a input.Action) {
	input.Send(f.engine, a, source)
}

// Update translates input into actions, then runs the due tick.
func (f *frontend) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// Losing focus pauses, like a browser tab going to the background
	if focused := ebiten.IsFocused(); focused != f.focused {
		f.focused = focused
		if !focused {
			f.dispatch(input.Action{Kind: input.KindPause})
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		px, py := ebiten.CursorPosition()
		x, y := f.viewport.ToCanvas(float64(px), float64(py))
		f.dispatch(input.Click(x, y, source))
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		px, py := ebiten.TouchPosition(id)
		x, y := f.viewport.ToCanvas(float64(px), float64(py))
		f.dispatch(input.Click(x, y, source))
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		f.dispatch(input.Action{Kind: input.KindTogglePause})
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		f.dispatch(input.Action{Kind: input.KindToggleDebug})
	case ebiten.IsKeyPressed(ebiten.KeyShift) && inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		f.dispatch(input.Action{Kind: input.KindCheat})
	}

	f.scheduler.Fire(time.Now())
	return nil
}

// Draw renders the latest snapshot.
func (f *frontend) Draw(screen *ebiten.Image) {
	snap := f.engine.Snapshot()
	f.drawCanvas(snap)

	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(f.viewport.Scale, f.viewport.Scale)
	op.GeoM.Translate(f.viewport.OffsetX, f.viewport.OffsetY)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(f.canvas, op)

	if snap.Debug {
		ebitenutil.DebugPrintAt(screen, "P pause  D debug  Esc quit", 4, 4)
	}
}

func (f *frontend) drawCanvas(snap game.GameSnapshot) {
	c := f.canvas
	w, h := float32(f.width), float32(f.height)

	if snap.Paused {
		c.Fill(color.Black)
		f.drawText(render.Layout(snap))
		return
	}

	c.Fill(render.ParseHexColor(render.Background))

	alpha := render.CircleOpacity(snap)
	for _, circle := range snap.Circles {
		clr := render.WithAlpha(render.ParseHexColor(circle.Color), alpha)
		vector.DrawFilledCircle(c, float32(circle.X), float32(circle.Y), float32(circle.Radius), clr, true)
	}

	if render.Dimmed(snap) {
		vector.DrawFilledRect(c, 0, 0, w, h, render.WithAlpha(color.RGBA{A: 255}, render.OverlayAlpha), false)
	}

	f.drawText(render.Layout(snap))
}

func (f *frontend) drawText(lines []render.TextLine) {
	for _, l := range lines {
		face, ok := f.faces[l.Size]
		if !ok {
			continue
		}

		x, y := int(l.X), int(l.Y)
		if l.Anchor == render.AnchorCenter {
			b := text.BoundString(face, l.Text)
			x -= b.Dx() / 2
			y -= (b.Min.Y + b.Max.Y) / 2
		}
		text.Draw(f.canvas, l.Text, face, x, y, render.ParseHexColor(l.Color))
	}
}

// Layout uses the full window and recomputes the letterbox.
func (f *frontend) Layout(outsideWidth, outsideHeight int) (int, int) {
	f.viewport = input.FitViewport(float64(outsideWidth), float64(outsideHeight), float64(f.width), float64(f.height))
	return outsideWidth, outsideHeight
}
