package render

import (
	"math"
)

// Material describes how a face's pixels are produced.
type Material struct {
	Texture *Texture // nil for untextured faces
	Blend   BlendMode
	// DebugColor is the ShadeNone fill; zero alpha selects Config.NoneColor.
	DebugColor Color
}

// RasterStats counts rasterizer work for one frame.
type RasterStats struct {
	Triangles     int
	Degenerate    int
	Pixels        int
	DepthRejected int
	Transparent   int
}

// Rasterizer fills screen-space triangles into a framebuffer.
type Rasterizer struct {
	fb    *Framebuffer
	Stats RasterStats
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{fb: fb}
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	return r.fb.Height
}

// BeginFrame prepares the buffers for a new frame. The color buffer is
// cleared only when Config.ClearBuffers is set; the depth buffer is always
// reset when depth testing is on, since depth from another pose is meaningless.
func (r *Rasterizer) BeginFrame(cfg Config) {
	r.Stats = RasterStats{}
	if cfg.ClearBuffers {
		r.fb.Clear(cfg.Background)
	}
	if cfg.DepthTest {
		r.fb.ClearDepth(cfg.DepthFunc.farValue())
	}
}

// edgeCoeffs returns A, B, C for the edge function E(x,y) = A*x + B*y + C of
// the edge (x0,y0)->(x1,y1). E is positive inside a triangle with positive
// Area2.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// isTopLeft reports whether an edge owns the pixels lying exactly on it:
// left edges (interior to the right) and flat top edges (interior below).
func isTopLeft(A, B float64) bool {
	return A > 0 || (A == 0 && B > 0)
}

func covers(w float64, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}

// triSetup holds the per-triangle constants used by the pixel loop.
type triSetup struct {
	v       [3]ScreenVertex
	depth   [3]float64
	uniform ColorF
	tex     *Texture
	blend   BlendMode
	cfg     *Config
}

// DrawTriangle fills a screen-space triangle. Pixel centres exactly on an
// edge follow the top-left rule, so triangles sharing an edge never both
// write the same pixel. Triangles with no area write nothing.
func (r *Rasterizer) DrawTriangle(tri ScreenTriangle, mat Material, cfg Config) {
	r.Stats.Triangles++

	area := tri.Area2()
	if !(math.Abs(area) > degenerateArea) {
		r.Stats.Degenerate++
		return
	}

	s := triSetup{v: tri.V, tex: mat.Texture, blend: mat.Blend, cfg: &cfg}
	if area < 0 {
		// Make the winding positive.
		s.v[1], s.v[2] = s.v[2], s.v[1]
		area = -area
	}
	for i := range s.v {
		if cfg.DepthFunc == DepthGreater {
			s.depth[i] = s.v[i].InvW
		} else {
			s.depth[i] = s.v[i].Z
		}
	}
	switch cfg.Shading {
	case ShadeNone:
		c := mat.DebugColor
		if c.A == 0 {
			c = cfg.NoneColor
		}
		s.uniform = ToColorF(c)
		s.tex = nil
	case ShadeFlat:
		s.uniform = tri.Flat
	}

	v0, v1, v2 := s.v[0], s.v[1], s.v[2]

	// Bounding box (clamped to screen)
	minX := max(0, int(math.Floor(min3(v0.X, v1.X, v2.X))))
	maxX := min(r.fb.Width-1, int(math.Ceil(max3(v0.X, v1.X, v2.X))))
	minY := max(0, int(math.Floor(min3(v0.Y, v1.Y, v2.Y))))
	maxY := min(r.fb.Height-1, int(math.Ceil(max3(v0.Y, v1.Y, v2.Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(v1.X, v1.Y, v2.X, v2.Y)
	A1, B1, C1 := edgeCoeffs(v2.X, v2.Y, v0.X, v0.Y)
	A2, B2, C2 := edgeCoeffs(v0.X, v0.Y, v1.X, v1.Y)
	tl0, tl1, tl2 := isTopLeft(A0, B0), isTopLeft(A1, B1), isTopLeft(A2, B2)
	invArea := 1.0 / area

	px := float64(minX) + 0.5
	for y := minY; y <= maxY; y++ {
		// Each scanline starts from an exact evaluation and steps across.
		py := float64(y) + 0.5
		w0 := A0*px + B0*py + C0
		w1 := A1*px + B1*py + C1
		w2 := A2*px + B2*py + C2

		for x := minX; x <= maxX; x++ {
			if covers(w0, tl0) && covers(w1, tl1) && covers(w2, tl2) {
				r.shadePixel(&s, x, y, w0*invArea, w1*invArea, w2*invArea)
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
	}
}

// shadePixel runs depth test, colour, texture, dither and blend for one
// covered pixel with barycentric weights l0, l1, l2.
func (r *Rasterizer) shadePixel(s *triSetup, x, y int, l0, l1, l2 float64) {
	fb := r.fb
	cfg := s.cfg
	idx := y*fb.Width + x

	var depth float64
	if cfg.DepthTest {
		depth = l0*s.depth[0] + l1*s.depth[1] + l2*s.depth[2]
		if !cfg.DepthFunc.passes(depth, fb.Depth[idx]) {
			r.Stats.DepthRejected++
			return
		}
	}

	c := s.uniform
	if cfg.Shading == ShadeGouraud {
		c0, c1, c2 := s.v[0].Color, s.v[1].Color, s.v[2].Color
		c = ColorF{
			R: l0*c0.R + l1*c1.R + l2*c2.R,
			G: l0*c0.G + l1*c1.G + l2*c2.G,
			B: l0*c0.B + l1*c1.B + l2*c2.B,
		}
	}

	if s.tex != nil {
		u, v := s.texCoord(l0, l1, l2)
		texel := s.tex.Sample(u, v)
		if texel.A == 0 {
			r.Stats.Transparent++
			return
		}
		c = modulate(texel, c, cfg.PSXModulation)
	}

	out := c.Color()
	if cfg.Dithering {
		out = Dither(out, x, y)
	}
	if s.blend != BlendOpaque {
		out = Blend(out, fb.Color[idx], s.blend)
	} else if cfg.DepthTest {
		fb.Depth[idx] = depth
	}
	fb.Color[idx] = out
	r.Stats.Pixels++
}

// texCoord interpolates UV either linearly in screen space (affine) or with
// 1/w weighting (perspective correct).
func (s *triSetup) texCoord(l0, l1, l2 float64) (u, v float64) {
	uv0, uv1, uv2 := s.v[0].UV, s.v[1].UV, s.v[2].UV
	if !s.cfg.PerspectiveCorrect {
		return l0*uv0.X + l1*uv1.X + l2*uv2.X, l0*uv0.Y + l1*uv1.Y + l2*uv2.Y
	}
	pw0 := l0 * s.v[0].InvW
	pw1 := l1 * s.v[1].InvW
	pw2 := l2 * s.v[2].InvW
	sum := pw0 + pw1 + pw2
	if sum == 0 {
		return l0*uv0.X + l1*uv1.X + l2*uv2.X, l0*uv0.Y + l1*uv1.Y + l2*uv2.Y
	}
	inv := 1 / sum
	return (pw0*uv0.X + pw1*uv1.X + pw2*uv2.X) * inv, (pw0*uv0.Y + pw1*uv1.Y + pw2*uv2.Y) * inv
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
