package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
)

// ShadingMode selects how colour is distributed across a triangle.
type ShadingMode int

const (
	ShadeNone    ShadingMode = iota // One fixed debug colour per face
	ShadeFlat                       // First vertex colour, uniform
	ShadeGouraud                    // Per-pixel interpolation of vertex colours
)

var shadingNames = map[ShadingMode]string{
	ShadeNone:    "none",
	ShadeFlat:    "flat",
	ShadeGouraud: "gouraud",
}

func (m ShadingMode) String() string {
	if s, ok := shadingNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ShadingMode(%d)", int(m))
}

// ParseShadingMode parses "none", "flat" or "gouraud" (case-insensitive).
func ParseShadingMode(s string) (ShadingMode, error) {
	for m, name := range shadingNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return ShadeGouraud, fmt.Errorf("unknown shading mode %q", s)
}

// Winding is the vertex order of a front face as seen by the viewer.
type Winding int

const (
	WindingCCW Winding = iota
	WindingCW
)

func (w Winding) String() string {
	if w == WindingCW {
		return "cw"
	}
	return "ccw"
}

// ParseWinding parses "cw" or "ccw".
func ParseWinding(s string) (Winding, error) {
	switch strings.ToLower(s) {
	case "ccw":
		return WindingCCW, nil
	case "cw":
		return WindingCW, nil
	}
	return WindingCCW, fmt.Errorf("unknown winding %q", s)
}

// DepthFunc selects which depth quantity is stored and how it is compared.
type DepthFunc int

const (
	// DepthLess stores NDC z and keeps the smaller value.
	DepthLess DepthFunc = iota
	// DepthGreater stores 1/w (reversed depth) and keeps the larger value.
	DepthGreater
)

func (f DepthFunc) String() string {
	if f == DepthGreater {
		return "greater"
	}
	return "less"
}

// ParseDepthFunc parses "less" or "greater".
func ParseDepthFunc(s string) (DepthFunc, error) {
	switch strings.ToLower(s) {
	case "less":
		return DepthLess, nil
	case "greater":
		return DepthGreater, nil
	}
	return DepthLess, fmt.Errorf("unknown depth function %q", s)
}

// farValue is the cleared depth buffer value: nothing is farther.
func (f DepthFunc) farValue() float64 {
	if f == DepthGreater {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

func (f DepthFunc) passes(depth, stored float64) bool {
	if f == DepthGreater {
		return depth > stored
	}
	return depth < stored
}

// OutsidePolicy decides what happens when the camera is in no room.
type OutsidePolicy int

const (
	OutsideNearest OutsidePolicy = iota // Render from the nearest room
	OutsideSkip                         // Render nothing but the cleared frame
)

func (p OutsidePolicy) String() string {
	if p == OutsideSkip {
		return "skip"
	}
	return "nearest"
}

// ParseOutsidePolicy parses "nearest" or "skip".
func ParseOutsidePolicy(s string) (OutsidePolicy, error) {
	switch strings.ToLower(s) {
	case "nearest":
		return OutsideNearest, nil
	case "skip":
		return OutsideSkip, nil
	}
	return OutsideNearest, fmt.Errorf("unknown outside-room policy %q", s)
}

// Config is the complete per-frame render configuration. It is passed by
// value into every frame; the pipeline keeps no toggles of its own.
type Config struct {
	Shading            ShadingMode
	PerspectiveCorrect bool
	VertexJitter       bool
	DepthTest          bool
	DepthFunc          DepthFunc

	// SnapBits is the sub-pixel precision of vertex jitter: screen
	// coordinates are rounded to the nearest 1/2^SnapBits pixel.
	SnapBits uint
	// NearEpsilon is the slack of near-plane clipping: a clip-space vertex
	// counts as in front of the plane while z+w >= -NearEpsilon.
	NearEpsilon float64
	FrontFace   Winding

	ClearBuffers bool
	Background   color.RGBA
	NoneColor    color.RGBA

	Dithering bool
	// PSXModulation treats vertex colour 128 as neutral when modulating
	// texels, doubling the available brightness.
	PSXModulation bool

	Lighting bool
	LightDir math3d.Vec3
	Ambient  float64

	PainterSort       bool
	BackfaceWireframe bool
	WireColor         color.RGBA
	// ShowPortals outlines every portal the visibility pass went through.
	ShowPortals bool
	PortalColor color.RGBA
	// ShowBounds outlines the bounding box of every visible room.
	ShowBounds  bool
	BoundsColor color.RGBA

	MaxPortalDepth int
	OutsideRoom    OutsidePolicy
}

// DefaultConfig returns the authentic configuration: affine texturing,
// jitter on, Gouraud shading and depth testing.
func DefaultConfig() Config {
	return Config{
		Shading:            ShadeGouraud,
		PerspectiveCorrect: false,
		VertexJitter:       true,
		DepthTest:          true,
		DepthFunc:          DepthLess,
		SnapBits:           4,
		NearEpsilon:        1e-5,
		FrontFace:          WindingCCW,
		ClearBuffers:       true,
		Background:         RGB(16, 16, 24),
		NoneColor:          ColorGray,
		PSXModulation:      true,
		LightDir:           math3d.V3(-1, -1, -1).Normalize(),
		Ambient:            0.5,
		PainterSort:        true,
		WireColor:          ColorMagenta,
		PortalColor:        ColorYellow,
		BoundsColor:        ColorCyan,
		MaxPortalDepth:     32,
		OutsideRoom:        OutsideNearest,
	}
}

// MaxSnapBits bounds SnapBits; beyond this snapping is indistinguishable
// from full precision at framebuffer scale.
const MaxSnapBits = 16

// Validate reports configuration values the pipeline cannot honour.
func (c Config) Validate() error {
	var errs []error
	if c.SnapBits > MaxSnapBits {
		errs = append(errs, fmt.Errorf("snap bits %d exceeds %d", c.SnapBits, MaxSnapBits))
	}
	if !(c.NearEpsilon > 0) {
		errs = append(errs, fmt.Errorf("near epsilon must be positive, got %v", c.NearEpsilon))
	}
	if c.Ambient < 0 || c.Ambient > 1 {
		errs = append(errs, fmt.Errorf("ambient %v outside [0,1]", c.Ambient))
	}
	if c.MaxPortalDepth < 1 {
		errs = append(errs, fmt.Errorf("max portal depth must be at least 1, got %d", c.MaxPortalDepth))
	}
	if c.Lighting && c.LightDir.LenSq() == 0 {
		errs = append(errs, errors.New("lighting enabled with zero light direction"))
	}
	return errors.Join(errs...)
}
