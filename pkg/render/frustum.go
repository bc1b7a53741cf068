package render

import (
	"math"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// PlaneFromPointNormal builds the plane through p with normal n.
func PlaneFromPointNormal(p, n math3d.Vec3) Plane {
	pl := Plane{Normal: n, D: -n.Dot(p)}
	pl.Normalize()
	return pl
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum is a convex view volume: a near and a far plane plus any number of
// side planes. The camera frustum has four sides; frustums narrowed through
// portals have one side per portal edge. All normals point inward.
type Frustum struct {
	Near  Plane
	Far   Plane
	Sides []Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// Uses the Gribb/Hartmann method for extracting planes from the combined matrix.
// The resulting planes have normals pointing inward.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// For column-major matrix m, row i element j is at m[i + j*4].
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r0, d0 := row(0)
	r1, d1 := row(1)
	r2, d2 := row(2)
	r3, d3 := row(3)

	mk := func(n math3d.Vec3, d float64) Plane {
		p := Plane{Normal: n, D: d}
		p.Normalize()
		return p
	}

	f := Frustum{
		Near:  mk(r3.Add(r2), d3+d2),
		Far:   mk(r3.Sub(r2), d3-d2),
		Sides: make([]Plane, 4),
	}
	f.Sides[FrustumLeft] = mk(r3.Add(r0), d3+d0)
	f.Sides[FrustumRight] = mk(r3.Sub(r0), d3-d0)
	f.Sides[FrustumBottom] = mk(r3.Add(r1), d3+d1)
	f.Sides[FrustumTop] = mk(r3.Sub(r1), d3-d1)
	return f
}

// Planes returns every plane of the frustum, near and far first.
func (f Frustum) Planes() []Plane {
	planes := make([]Plane, 0, len(f.Sides)+2)
	planes = append(planes, f.Near, f.Far)
	return append(planes, f.Sides...)
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes() {
		if pl.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectAABB tests if the AABB intersects or is inside the frustum.
// Returns true if any part of the AABB may be visible.
// Uses the "positive vertex" optimization for faster rejection.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes() {
		// The corner furthest along the normal; if it is outside, the whole
		// box is.
		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// Narrow returns the frustum seen from eye through a convex polygon lying
// inside f: one side plane through the eye and each polygon edge, keeping
// f's near and far planes. Edges nearly collinear with the eye add no plane.
func (f Frustum) Narrow(eye math3d.Vec3, poly []math3d.Vec3) Frustum {
	out := Frustum{Near: f.Near, Far: f.Far, Sides: make([]Plane, 0, len(poly))}
	if len(poly) < 3 {
		return out
	}

	var centroid math3d.Vec3
	for _, p := range poly {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1 / float64(len(poly)))

	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		n := a.Sub(eye).Cross(b.Sub(eye))
		if n.LenSq() < 1e-18 {
			continue
		}
		if n.Dot(centroid.Sub(eye)) < 0 {
			n = n.Negate()
		}
		out.Sides = append(out.Sides, PlaneFromPointNormal(eye, n))
	}
	return out
}

// ClipPolygon clips a convex polygon against every plane of the frustum and
// returns what remains inside. The result is empty when nothing is inside.
func (f Frustum) ClipPolygon(poly []math3d.Vec3) []math3d.Vec3 {
	out := poly
	for _, pl := range f.Planes() {
		out = ClipPolygonPlane(out, pl)
		if len(out) == 0 {
			return nil
		}
	}
	return out
}

// ClipPolygonPlane keeps the part of a convex polygon on the positive side of
// the plane (Sutherland-Hodgman).
func ClipPolygonPlane(poly []math3d.Vec3, pl Plane) []math3d.Vec3 {
	if len(poly) == 0 {
		return nil
	}
	out := make([]math3d.Vec3, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevD := pl.DistanceToPoint(prev)
	for _, cur := range poly {
		curD := pl.DistanceToPoint(cur)
		switch {
		case curD >= 0 && prevD >= 0:
			out = append(out, cur)
		case curD >= 0 && prevD < 0:
			out = append(out, prev.Lerp(cur, prevD/(prevD-curD)), cur)
		case curD < 0 && prevD >= 0:
			out = append(out, prev.Lerp(cur, prevD/(prevD-curD)))
		}
		prev, prevD = cur, curD
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// PolygonArea returns the area of a planar polygon.
func PolygonArea(poly []math3d.Vec3) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum math3d.Vec3
	for i, a := range poly {
		sum = sum.Add(a.Cross(poly[(i+1)%len(poly)]))
	}
	return sum.Len() / 2
}

// PolygonNormal returns the unit normal of a planar polygon following its
// counter-clockwise vertex order (Newell's method).
func PolygonNormal(poly []math3d.Vec3) math3d.Vec3 {
	var n math3d.Vec3
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n.Normalize()
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that any Extend call replaces.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the box grown to contain p.
func (b AABB) Extend(p math3d.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// DistanceToPoint returns the distance from p to the closest point of the
// box; zero when p is inside.
func (b AABB) DistanceToPoint(p math3d.Vec3) float64 {
	closest := p.Max(b.Min).Min(b.Max)
	return closest.Distance(p)
}

// selectComponent is a branchless conditional selection helper.
func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
