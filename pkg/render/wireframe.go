package render

import (
	"math"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
)

// Wireframe draws debug outlines over a rendered frame. Lines ignore the
// depth buffer.
type Wireframe struct {
	viewProj math3d.Mat4
	fb       *Framebuffer
}

// NewWireframe creates a wireframe renderer for the camera's current pose.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		viewProj: camera.ViewProjectionMatrix(),
		fb:       fb,
	}
}

// DrawLine3D draws a world-space line, clipped at the near plane.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	c1 := w.viewProj.MulVec4(math3d.V4FromV3(p1, 1))
	c2 := w.viewProj.MulVec4(math3d.V4FromV3(p2, 1))

	d1, d2 := c1.Z+c1.W, c2.Z+c2.W
	switch {
	case d1 < 0 && d2 < 0:
		return
	case d1 < 0:
		c1 = c1.Lerp(c2, d1/(d1-d2))
	case d2 < 0:
		c2 = c2.Lerp(c1, d2/(d2-d1))
	}

	x1, y1 := w.toPixel(c1)
	x2, y2 := w.toPixel(c2)
	w.fb.DrawLine(x1, y1, x2, y2, color)
}

func (w *Wireframe) toPixel(c math3d.Vec4) (int, int) {
	ndc := c.PerspectiveDivide()
	x := (ndc.X + 1) * 0.5 * float64(w.fb.Width)
	y := (1 - ndc.Y) * 0.5 * float64(w.fb.Height) // Y is flipped
	return clampPixel(x), clampPixel(y)
}

// clampPixel keeps far off-screen endpoints from making Bresenham walk
// billions of steps.
func clampPixel(v float64) int {
	const limit = 1 << 14
	return int(math.Max(-limit, math.Min(limit, math.Floor(v))))
}

// DrawPolygon3D draws the closed outline of a world-space polygon.
func (w *Wireframe) DrawPolygon3D(poly []math3d.Vec3, color Color) {
	for i, a := range poly {
		w.DrawLine3D(a, poly[(i+1)%len(poly)], color)
	}
}

// DrawAABB draws the 12 edges of a box.
func (w *Wireframe) DrawAABB(box AABB, color Color) {
	lo, hi := box.Min, box.Max
	corners := [8]math3d.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], color)
	}
}

// DrawOutline draws the closed outline of an already projected polygon, as
// collected for culled back faces.
func (fb *Framebuffer) DrawOutline(poly []ScreenVertex, color Color) {
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		fb.DrawLine(clampPixel(a.X), clampPixel(a.Y), clampPixel(b.X), clampPixel(b.Y), color)
	}
}
