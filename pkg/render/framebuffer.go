// Package render implements the software rendering core: the vertex stage,
// the triangle rasterizer, frame buffers, textures and the presenters that
// hand finished frames to a terminal or window.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Fixed output resolution.
const (
	ScreenWidth  = 320
	ScreenHeight = 240
)

// Framebuffer holds the color buffer and the depth buffer of one frame. Both
// are row-major and share the same dimensions.
type Framebuffer struct {
	Width  int
	Height int
	Color  []color.RGBA
	Depth  []float64
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]color.RGBA, width*height),
		Depth:  make([]float64, width*height),
	}
}

// NewScreenFramebuffer creates a framebuffer at the fixed 320x240 resolution.
func NewScreenFramebuffer() *Framebuffer {
	return NewFramebuffer(ScreenWidth, ScreenHeight)
}

// Clear fills the color buffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	n := len(fb.Color)
	if n == 0 {
		return
	}
	// Copy-doubling for faster clearing
	fb.Color[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Color[i:], fb.Color[:i])
	}
}

// ClearDepth fills the depth buffer with v.
func (fb *Framebuffer) ClearDepth(v float64) {
	n := len(fb.Depth)
	if n == 0 {
		return
	}
	fb.Depth[0] = v
	for i := 1; i < n; i *= 2 {
		copy(fb.Depth[i:], fb.Depth[:i])
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Color[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Color[y*fb.Width+x]
}

// DepthAt returns the stored depth at (x, y), or NaN if out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return math.NaN()
	}
	return fb.Depth[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage copies the color buffer into a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	fb.CopyTo(img)
	return img
}

// CopyTo copies the color buffer into dst, which must be at least as large
// as the framebuffer.
func (fb *Framebuffer) CopyTo(dst *image.RGBA) {
	for y := 0; y < fb.Height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x, c := range fb.Color[y*fb.Width : (y+1)*fb.Width] {
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// SavePNG saves the color buffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
