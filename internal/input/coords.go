package input

// Viewport maps window pixels onto the canvas when the canvas is drawn
// scaled and offset inside a larger window.
type Viewport struct {
	OffsetX, OffsetY float64
	Scale            float64 // window pixels per canvas pixel
}

// FitViewport centers a canvas of cw x ch inside a window of ww x wh,
// scaled uniformly to fit.
func FitViewport(ww, wh, cw, ch float64) Viewport {
	if cw <= 0 || ch <= 0 || ww <= 0 || wh <= 0 {
		return Viewport{Scale: 1}
	}
	scale := ww / cw
	if s := wh / ch; s < scale {
		scale = s
	}
	return Viewport{
		OffsetX: (ww - cw*scale) / 2,
		OffsetY: (wh - ch*scale) / 2,
		Scale:   scale,
	}
}

// ToCanvas converts a window position to canvas coordinates.
func (v Viewport) ToCanvas(px, py float64) (x, y float64) {
	scale := v.Scale
	if scale == 0 {
		scale = 1
	}
	return (px - v.OffsetX) / scale, (py - v.OffsetY) / scale
}

// CellToCanvas maps a terminal cell to the canvas point at its center.
func CellToCanvas(col, row, cols, rows int, width, height float64) (x, y float64) {
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	x = (float64(col) + 0.5) * width / float64(cols)
	y = (float64(row) + 0.5) * height / float64(rows)
	return x, y
}

// CanvasToCell is the inverse of CellToCanvas, clamped to the grid.
func CanvasToCell(x, y float64, cols, rows int, width, height float64) (col, row int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	col = int(x * float64(cols) / width)
	row = int(y * float64(rows) / height)
	if col < 0 {
		col = 0
	}
	if col >= cols {
		col = cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return col, row
}
