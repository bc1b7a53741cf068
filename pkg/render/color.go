package render

import (
	"image/color"
	"math"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack   = color.RGBA{0, 0, 0, 255}
	ColorWhite   = color.RGBA{255, 255, 255, 255}
	ColorRed     = color.RGBA{255, 0, 0, 255}
	ColorGreen   = color.RGBA{0, 255, 0, 255}
	ColorBlue    = color.RGBA{0, 0, 255, 255}
	ColorYellow  = color.RGBA{255, 255, 0, 255}
	ColorCyan    = color.RGBA{0, 255, 255, 255}
	ColorMagenta = color.RGBA{255, 0, 255, 255}
	ColorGray    = color.RGBA{128, 128, 128, 255}
	ColorNeutral = color.RGBA{128, 128, 128, 255} // Identity for PSX modulation
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}

// ColorF is a colour with float channels on the 0..255 scale. Vertex colours
// travel through clipping and interpolation in this form.
type ColorF struct {
	R, G, B float64
}

// ToColorF converts an 8-bit colour.
func ToColorF(c Color) ColorF {
	return ColorF{float64(c.R), float64(c.G), float64(c.B)}
}

// Scale multiplies every channel by s.
func (c ColorF) Scale(s float64) ColorF {
	return ColorF{c.R * s, c.G * s, c.B * s}
}

// Lerp interpolates towards o by t.
func (c ColorF) Lerp(o ColorF, t float64) ColorF {
	return ColorF{c.R + (o.R-c.R)*t, c.G + (o.G-c.G)*t, c.B + (o.B-c.B)*t}
}

// Color rounds and saturates to an opaque 8-bit colour.
func (c ColorF) Color() Color {
	return Color{R: clamp8(c.R), G: clamp8(c.G), B: clamp8(c.B), A: 255}
}

// clamp8 rounds to nearest and saturates to 0..255.
func clamp8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// ShadeColor scales a colour by a lighting intensity, saturating at 255.
func ShadeColor(c Color, intensity float64) Color {
	return Color{
		R: clamp8(float64(c.R) * intensity),
		G: clamp8(float64(c.G) * intensity),
		B: clamp8(float64(c.B) * intensity),
		A: c.A,
	}
}

// modulate multiplies a texel by a shading colour. With psx set the colour
// 128 is neutral and the result saturates later, otherwise 255 is neutral.
func modulate(texel Color, shade ColorF, psx bool) ColorF {
	div := 255.0
	if psx {
		div = 128.0
	}
	return ColorF{
		R: float64(texel.R) * shade.R / div,
		G: float64(texel.G) * shade.G / div,
		B: float64(texel.B) * shade.B / div,
	}
}

// ShadeIntensity is the diffuse term used by flat and Gouraud lighting:
// ambient plus the remaining light scaled by n·l, clamped to [0,1]. The light
// direction points from the light into the scene.
func ShadeIntensity(normal, lightDir math3d.Vec3, ambient float64) float64 {
	diffuse := math.Max(0, normal.Dot(lightDir.Negate()))
	return math.Max(0, math.Min(1, ambient+(1-ambient)*diffuse))
}
