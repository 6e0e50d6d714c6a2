// Package render draws game snapshots. Layout is shared by every frontend;
// FrameRenderer rasterises a full frame with gg.
package render

import (
	"fmt"

	"boomshine/internal/game"
)

// Size is a text size class
type Size uint8

const (
	SizeSmall Size = iota
	SizeBody
	SizeMedium
	SizeLarge
	SizeHuge
)

// Points returns the font size in points for a 640x480 canvas.
func (s Size) Points() float64 {
	switch s {
	case SizeSmall:
		return 14
	case SizeBody:
		return 17
	case SizeMedium:
		return 20
	case SizeLarge:
		return 30
	default:
		return 40
	}
}

// Anchor says how a line is positioned relative to X, Y. For AnchorLeft X is
// the left edge and Y the baseline; for AnchorCenter X, Y is the text center.
type Anchor uint8

const (
	AnchorLeft Anchor = iota
	AnchorCenter
)

// Text colors
const (
	ColorBlack = "#000000"
	ColorWhite = "#FFFFFF"
	ColorRed   = "#FF0000"
	ColorHUD   = "#DDDDDD"
)

// Frame colors and opacities
const (
	Background   = "#04725D"
	CircleAlpha  = 0.9
	DimmedAlpha  = 0.25
	OverlayAlpha = 0.5
)

// TextLine is one piece of text placed in canvas coordinates.
type TextLine struct {
	Text   string
	X, Y   float64
	Size   Size
	Color  string
	Anchor Anchor
}

// Layout returns every text line for snap in draw order.
func Layout(snap game.GameSnapshot) []TextLine {
	w, h := snap.Width, snap.Height
	cx, cy := w/2, h/2

	if snap.Paused {
		return []TextLine{center("...PAUSED...", cx, cy, SizeHuge, ColorWhite)}
	}

	var lines []TextLine

	if snap.State != game.StateBegin {
		lines = append(lines,
			TextLine{
				Text:  fmt.Sprintf("Round score: %d/%d of %d", snap.RoundScore, snap.TargetNum, snap.NumCircles),
				X:     20,
				Y:     20,
				Size:  SizeSmall,
				Color: ColorHUD,
			},
			TextLine{
				Text:  fmt.Sprintf("Total score: %d", snap.TotalScore),
				X:     w - 200,
				Y:     20,
				Size:  SizeSmall,
				Color: ColorHUD,
			},
		)
	}

	switch snap.State {
	case game.StateBegin:
		lines = append(lines,
			center("Welcome to Boomshine!", cx, cy-80, SizeLarge, ColorBlack),
			center("To play, click on a circle.", cx, cy-40, SizeMedium, ColorBlack),
			center("Earn enough points to get to the next level.", cx, cy, SizeBody, ColorBlack),
			center(getN(snap.TargetNum, snap.NumCircles), cx, cy+40, SizeMedium, ColorWhite),
			center("Click to start!", cx, cy+130, SizeLarge, ColorBlack),
		)

	case game.StateEnd:
		lines = append(lines,
			center("Game over!", cx, cy, SizeLarge, ColorRed),
			center(fmt.Sprintf("Your final score is: %d points", snap.TotalScore), cx, cy+40, SizeMedium, ColorWhite),
			center("Click to play again!", cx, cy+80, SizeLarge, ColorWhite),
		)

	case game.StateRoundOver:
		lines = append(lines,
			center(snap.WinMessage, cx, cy-60, SizeMedium, ColorRed),
			center("Click to continue", cx, cy, SizeLarge, ColorWhite),
		)
		if snap.HasNext {
			lines = append(lines, center(getN(snap.NextTargetNum, snap.NextNumCircles), cx, cy+60, SizeMedium, ColorWhite))
		}

	case game.StateRepeatLevel:
		lines = append(lines,
			center(snap.FailMessage, cx, cy-60, SizeMedium, ColorRed),
			center("Click to try again!", cx, cy, SizeLarge, ColorWhite),
		)
	}

	if snap.Debug {
		lines = append(lines, TextLine{
			Text:  fmt.Sprintf("dt: %.3f", snap.DeltaTime),
			X:     w - 150,
			Y:     h - 10,
			Size:  SizeMedium,
			Color: ColorWhite,
		})
	}

	return lines
}

// Dimmed reports whether the frame gets the translucent black overlay.
func Dimmed(snap game.GameSnapshot) bool {
	return !snap.Paused && snap.State.Dimmed()
}

// CircleOpacity returns the fill opacity for circles in snap.
func CircleOpacity(snap game.GameSnapshot) float64 {
	if snap.State.Dimmed() {
		return DimmedAlpha
	}
	return CircleAlpha
}

func center(text string, x, y float64, size Size, color string) TextLine {
	return TextLine{Text: text, X: x, Y: y, Size: size, Color: color, Anchor: AnchorCenter}
}

func getN(target, circles int) string {
	return fmt.Sprintf("Get %d out of %d in this round", target, circles)
}
