package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	xdraw "golang.org/x/image/draw"
)

// TerminalRenderer presents frames on a terminal screen using half-block
// cells: each cell shows two vertically stacked pixels with ▀, fg=top and
// bg=bottom. Frames are scaled to the screen with nearest-neighbour sampling
// to keep the low-resolution look.
type TerminalRenderer struct {
	scr    uv.Screen
	scaled *image.RGBA
	src    *image.RGBA
}

// NewTerminalRenderer creates a presenter for scr, sized to its bounds.
func NewTerminalRenderer(scr uv.Screen) *TerminalRenderer {
	t := &TerminalRenderer{scr: scr}
	b := scr.Bounds()
	t.Resize(b.Dx(), b.Dy())
	return t
}

// Resize sets the target size in terminal cells.
func (t *TerminalRenderer) Resize(cols, rows int) {
	t.scaled = image.NewRGBA(image.Rect(0, 0, max(cols, 1), max(rows, 1)*2))
}

// FramebufferSize returns the pixel size a frame is scaled to.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	b := t.scaled.Bounds()
	return b.Dx(), b.Dy()
}

// Render scales fb to the screen and writes it as half-block cells.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	if t.src == nil || t.src.Bounds().Dx() != fb.Width || t.src.Bounds().Dy() != fb.Height {
		t.src = image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	}
	fb.CopyTo(t.src)
	xdraw.NearestNeighbor.Scale(t.scaled, t.scaled.Bounds(), t.src, t.src.Bounds(), xdraw.Src, nil)
	t.Draw(t.scr, t.scr.Bounds())
}

// Draw implements uv.Drawable for the last scaled frame.
func (t *TerminalRenderer) Draw(scr uv.Screen, area uv.Rectangle) {
	w, h := t.FramebufferSize()
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if botY >= h {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= w {
				break
			}
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(t.scaled.RGBAAt(x, topY)),
					Bg: rgbaToColor(t.scaled.RGBAAt(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
