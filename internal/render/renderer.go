package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"boomshine/internal/game"

	"github.com/fogleman/gg"
)

// FrameRenderer rasterises snapshots into an RGBA canvas.
//
// It reuses one gg context, so concurrent callers are serialised.
type FrameRenderer struct {
	mu    sync.Mutex
	dc    *gg.Context
	faces Faces

	width, height int
}

// NewFrameRenderer creates a renderer for a width x height canvas. Fonts are
// loaded once here, not per frame.
func NewFrameRenderer(width, height int, fontPath string) *FrameRenderer {
	return &FrameRenderer{
		dc:     gg.NewContext(width, height),
		faces:  LoadFaces(fontPath),
		width:  width,
		height: height,
	}
}

// Render draws snap and returns a copy of the frame.
func (r *FrameRenderer) Render(snap game.GameSnapshot) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)

	src := r.dc.Image().(*image.RGBA)
	out := image.NewRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}

// EncodePNG draws snap and writes it to w as PNG.
func (r *FrameRenderer) EncodePNG(w io.Writer, snap game.GameSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.draw(snap)
	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

func (r *FrameRenderer) draw(snap game.GameSnapshot) {
	dc := r.dc
	w, h := float64(r.width), float64(r.height)

	dc.Identity()
	if snap.Width > 0 && snap.Height > 0 {
		dc.Scale(w/snap.Width, h/snap.Height)
		w, h = snap.Width, snap.Height
	}

	if snap.Paused {
		dc.SetColor(color.Black)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
		r.drawText(Layout(snap))
		return
	}

	dc.SetColor(ParseHexColor(Background))
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	alpha := CircleOpacity(snap)
	for _, c := range snap.Circles {
		dc.SetColor(WithAlpha(ParseHexColor(c.Color), alpha))
		dc.DrawCircle(c.X, c.Y, c.Radius)
		dc.Fill()
	}

	if Dimmed(snap) {
		dc.SetColor(WithAlpha(color.RGBA{0, 0, 0, 255}, OverlayAlpha))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	}

	r.drawText(Layout(snap))
}

func (r *FrameRenderer) drawText(lines []TextLine) {
	dc := r.dc
	for _, l := range lines {
		if face, ok := r.faces[l.Size]; ok {
			dc.SetFontFace(face)
		}
		dc.SetColor(ParseHexColor(l.Color))

		switch l.Anchor {
		case AnchorCenter:
			dc.DrawStringAnchored(l.Text, l.X, l.Y, 0.5, 0.5)
		default:
			dc.DrawString(l.Text, l.X, l.Y)
		}
	}
}

// Size returns the output dimensions.
func (r *FrameRenderer) Size() (width, height int) {
	return r.width, r.height
}
