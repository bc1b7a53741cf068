package render

import (
	"fmt"
	"strings"
)

// BlendMode is a semi-transparency mode applied when a pixel is written over
// the existing framebuffer contents.
type BlendMode int

const (
	BlendOpaque     BlendMode = iota // F
	BlendAverage                     // (B + F) / 2
	BlendAdd                         // B + F
	BlendSubtract                    // B - F
	BlendAddQuarter                  // B + F/4
)

var blendNames = [...]string{"opaque", "average", "add", "subtract", "add-quarter"}

func (m BlendMode) String() string {
	if m >= 0 && int(m) < len(blendNames) {
		return blendNames[m]
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// ParseBlendMode parses a blend mode name. The empty string is opaque.
func ParseBlendMode(s string) (BlendMode, error) {
	if s == "" {
		return BlendOpaque, nil
	}
	for i, name := range blendNames {
		if strings.EqualFold(s, name) {
			return BlendMode(i), nil
		}
	}
	return BlendOpaque, fmt.Errorf("unknown blend mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m BlendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlendMode) UnmarshalText(text []byte) error {
	v, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Blend combines a front (new) colour with the back (framebuffer) colour.
// Channels saturate at 0 and 255; the result is opaque.
func Blend(front, back Color, mode BlendMode) Color {
	switch mode {
	case BlendAverage:
		return blendChannels(front, back, func(f, b int) int { return (b + f) / 2 })
	case BlendAdd:
		return blendChannels(front, back, func(f, b int) int { return b + f })
	case BlendSubtract:
		return blendChannels(front, back, func(f, b int) int { return b - f })
	case BlendAddQuarter:
		return blendChannels(front, back, func(f, b int) int { return b + f/4 })
	default:
		return front
	}
}

func blendChannels(f, b Color, op func(f, b int) int) Color {
	return Color{
		R: sat8(op(int(f.R), int(b.R))),
		G: sat8(op(int(f.G), int(b.G))),
		B: sat8(op(int(f.B), int(b.B))),
		A: 255,
	}
}

func sat8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
