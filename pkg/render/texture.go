package render

import (
	"errors"
	"fmt"
	"image"
	"math/bits"
)

// MaxTextureSize is the largest supported texture edge.
const MaxTextureSize = 256

// ErrTextureSize is returned for textures that are not square powers of two
// no larger than MaxTextureSize.
var ErrTextureSize = errors.New("texture must be a square power of two")

// Texture is a square, power-of-two pixel grid sampled with nearest-neighbour
// filtering and repeat wrapping. There are no mipmaps.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
	mask   int
}

// ValidTextureSize reports whether size is a usable texture edge.
func ValidTextureSize(size int) bool {
	return size > 0 && size <= MaxTextureSize && bits.OnesCount(uint(size)) == 1
}

// NewTexture creates an empty texture of size x size.
func NewTexture(size int) (*Texture, error) {
	if !ValidTextureSize(size) {
		return nil, fmt.Errorf("%w: got %d", ErrTextureSize, size)
	}
	return &Texture{
		Width:  size,
		Height: size,
		Pixels: make([]Color, size*size),
		mask:   size - 1,
	}, nil
}

// TextureFromImage creates a texture from an image that is already a square
// power of two.
func TextureFromImage(img image.Image) (*Texture, error) {
	bounds := img.Bounds()
	if bounds.Dx() != bounds.Dy() {
		return nil, fmt.Errorf("%w: got %dx%d", ErrTextureSize, bounds.Dx(), bounds.Dy())
	}
	tex, err := NewTexture(bounds.Dx())
	if err != nil {
		return nil, err
	}

	for y := range tex.Height {
		for x := range tex.Width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, a := c.RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.SetPixel(x, y, Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			})
		}
	}
	return tex, nil
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(size, checkSize int, c1, c2 Color) (*Texture, error) {
	tex, err := NewTexture(size)
	if err != nil {
		return nil, err
	}
	if checkSize < 1 {
		checkSize = 1
	}
	for y := range size {
		for x := range size {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex, nil
}

// NewBrickTexture creates a procedural brick pattern with mortar lines.
func NewBrickTexture(size int, brick, mortar Color) (*Texture, error) {
	tex, err := NewTexture(size)
	if err != nil {
		return nil, err
	}
	rowH := max(size/8, 2)
	brickW := rowH * 2
	for y := range size {
		row := y / rowH
		offset := (row % 2) * brickW / 2
		for x := range size {
			c := brick
			if y%rowH == 0 || (x+offset)%brickW == 0 {
				c = mortar
			}
			tex.SetPixel(x, y, c)
		}
	}
	return tex, nil
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the nearest texel at UV coordinates, repeating outside
// [0,1). V runs bottom to top, image rows top to bottom.
func (t *Texture) Sample(u, v float64) Color {
	x := floorInt(u*float64(t.Width)) & t.mask
	y := floorInt((1-v)*float64(t.Height)) & t.mask
	return t.Pixels[y*t.Width+x]
}

// floorInt is math.Floor converted to int, without the float round trip for
// the common non-negative case.
func floorInt(f float64) int {
	i := int(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return i
}
