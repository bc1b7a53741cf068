package render

import (
	"math"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
)

// Vertex represents an authored model-space vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3 // Zero means "use the face normal"
	UV       math3d.Vec2
	Color    Color
}

// Triangle represents a triangle to be processed.
type Triangle struct {
	V [3]Vertex
}

// ClipVertex is a vertex in homogeneous clip space with its attributes.
type ClipVertex struct {
	Pos   math3d.Vec4
	UV    math3d.Vec2
	Color ColorF
}

// ScreenVertex is a vertex after the perspective divide and viewport mapping.
type ScreenVertex struct {
	X, Y  float64 // Pixel coordinates, y down
	Z     float64 // NDC depth, -1 at the near plane
	InvW  float64 // 1/w, for perspective correction and reversed depth
	UV    math3d.Vec2
	Color ColorF
}

// ScreenTriangle is a clipped, projected triangle ready for rasterization.
type ScreenTriangle struct {
	V [3]ScreenVertex
	// Flat is the lit colour of the authored first vertex. Clipping may
	// replace V[0], so flat shading reads this instead.
	Flat ColorF
}

// Area2 returns twice the signed screen area. In y-down pixel space the
// value is negative for triangles that appear counter-clockwise.
func (t ScreenTriangle) Area2() float64 {
	a, b, c := t.V[0], t.V[1], t.V[2]
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Outcome reports what the vertex stage did with a triangle.
type Outcome int

const (
	OutcomeEmitted    Outcome = iota // At least one screen triangle produced
	OutcomeBehind                    // Entirely behind the near plane
	OutcomeCulled                    // Back-facing
	OutcomeDegenerate                // Zero screen area
)

// VertexStats counts vertex stage outcomes for one frame.
type VertexStats struct {
	Submitted  int
	Emitted    int // Screen triangles produced
	Clipped    int // Triangles that crossed the near plane
	Behind     int
	Culled     int
	Degenerate int
}

// degenerateArea is the smallest twice-area in square pixels that still
// counts as a triangle.
const degenerateArea = 1e-9

// Processor is the vertex stage: it transforms model-space triangles to
// screen space, clips them at the near plane, snaps them and culls back faces.
type Processor struct {
	width, height int
	cfg           Config

	viewProj  math3d.Mat4
	model     math3d.Mat4
	normalMat math3d.Mat4
	mvp       math3d.Mat4
	light     math3d.Vec3
	ambient   float64

	Stats VertexStats

	// Backfaces collects the screen outlines of culled triangles when
	// Config.BackfaceWireframe is set.
	Backfaces [][]ScreenVertex

	clip    [2][]ClipVertex
	scratch []ScreenVertex
}

// NewProcessor creates a vertex stage for a width x height target.
func NewProcessor(width, height int, viewProj math3d.Mat4, cfg Config) *Processor {
	p := &Processor{
		width:    width,
		height:   height,
		cfg:      cfg,
		viewProj: viewProj,
		light:    cfg.LightDir.Normalize(),
		ambient:  cfg.Ambient,
	}
	p.SetModel(math3d.Identity())
	return p
}

// SetModel sets the model-to-world transform.
func (p *Processor) SetModel(m math3d.Mat4) {
	p.model = m
	p.normalMat = m.NormalMatrix()
	p.mvp = p.viewProj.Mul(m)
}

// SetAmbient overrides the ambient light term, e.g. per room.
func (p *Processor) SetAmbient(a float64) {
	p.ambient = a
}

// ProcessTriangle runs the full vertex stage on one triangle and appends the
// resulting screen triangles to dst. Double-sided triangles are never culled.
func (p *Processor) ProcessTriangle(dst []ScreenTriangle, tri Triangle, doubleSided bool) ([]ScreenTriangle, Outcome) {
	p.Stats.Submitted++

	poly := p.transform(tri)
	flat := poly[0].Color
	clipped := ClipNear(poly, p.cfg.NearEpsilon, p.clip[1][:0])
	p.clip[1] = clipped
	if len(clipped) == 0 {
		p.Stats.Behind++
		return dst, OutcomeBehind
	}
	if crossesNear(poly, p.cfg.NearEpsilon) {
		p.Stats.Clipped++
	}

	screen := p.scratch[:0]
	for _, cv := range clipped {
		screen = append(screen, p.toScreen(cv))
	}
	p.scratch = screen

	area := polygonArea2(screen)
	if math.Abs(area) <= degenerateArea {
		p.Stats.Degenerate++
		return dst, OutcomeDegenerate
	}
	if !doubleSided && !IsFrontFacing(area, p.cfg.FrontFace) {
		p.Stats.Culled++
		if p.cfg.BackfaceWireframe {
			p.Backfaces = append(p.Backfaces, append([]ScreenVertex(nil), screen...))
		}
		return dst, OutcomeCulled
	}

	for i := 1; i+1 < len(screen); i++ {
		dst = append(dst, ScreenTriangle{V: [3]ScreenVertex{screen[0], screen[i], screen[i+1]}, Flat: flat})
		p.Stats.Emitted++
	}
	return dst, OutcomeEmitted
}

// transform moves a triangle to clip space and resolves its vertex colours,
// applying lighting when enabled.
func (p *Processor) transform(tri Triangle) []ClipVertex {
	out := p.clip[0][:0]

	var intensity [3]float64
	for i := range intensity {
		intensity[i] = 1
	}
	if p.cfg.Lighting && p.cfg.Shading != ShadeNone {
		w0 := p.model.MulVec3(tri.V[0].Position)
		w1 := p.model.MulVec3(tri.V[1].Position)
		w2 := p.model.MulVec3(tri.V[2].Position)
		faceN := w1.Sub(w0).Cross(w2.Sub(w0)).Normalize()
		if p.cfg.FrontFace == WindingCW {
			faceN = faceN.Negate()
		}
		for i := range intensity {
			n := faceN
			if p.cfg.Shading == ShadeGouraud && tri.V[i].Normal.LenSq() > 0 {
				n = p.normalMat.MulVec3Dir(tri.V[i].Normal).Normalize()
			}
			intensity[i] = ShadeIntensity(n, p.light, p.ambient)
		}
	}

	for i, v := range tri.V {
		out = append(out, ClipVertex{
			Pos:   p.mvp.MulVec4(math3d.V4FromV3(v.Position, 1)),
			UV:    v.UV,
			Color: ToColorF(v.Color).Scale(intensity[i]),
		})
	}
	p.clip[0] = out
	return out
}

// toScreen performs the perspective divide and viewport mapping, then snaps
// x and y when vertex jitter is enabled.
func (p *Processor) toScreen(cv ClipVertex) ScreenVertex {
	invW := 1 / cv.Pos.W
	sv := ScreenVertex{
		X:     (cv.Pos.X*invW + 1) * 0.5 * float64(p.width),
		Y:     (1 - cv.Pos.Y*invW) * 0.5 * float64(p.height), // Y is flipped
		Z:     cv.Pos.Z * invW,
		InvW:  invW,
		UV:    cv.UV,
		Color: cv.Color,
	}
	if p.cfg.VertexJitter {
		sv.X = SnapCoord(sv.X, p.cfg.SnapBits)
		sv.Y = SnapCoord(sv.Y, p.cfg.SnapBits)
	}
	return sv
}

// SnapCoord rounds v to the nearest multiple of 1/2^bits, halves away from
// zero. The result is exact, so snapping is deterministic and idempotent.
// bits above MaxSnapBits are treated as MaxSnapBits.
func SnapCoord(v float64, bits uint) float64 {
	bits = min(bits, MaxSnapBits)
	scale := float64(uint64(1) << bits)
	return math.Round(v*scale) / scale
}

// IsFrontFacing reports whether a polygon with the given y-down signed area
// faces the viewer under the front-face convention.
func IsFrontFacing(area2 float64, front Winding) bool {
	if front == WindingCW {
		return area2 > 0
	}
	return area2 < 0
}

// polygonArea2 returns twice the signed shoelace area of a screen polygon.
func polygonArea2(poly []ScreenVertex) float64 {
	var sum float64
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}

// ClipNear clips a convex clip-space polygon against the near plane
// (z >= -w). Vertices within epsilon of the plane count as inside. New
// vertices interpolate position, UV and colour linearly at the crossing.
// The result is appended to dst; it is empty when the polygon lies entirely
// behind the plane.
func ClipNear(poly []ClipVertex, epsilon float64, dst []ClipVertex) []ClipVertex {
	if len(poly) == 0 {
		return dst
	}
	dist := func(v ClipVertex) float64 { return v.Pos.Z + v.Pos.W }

	prev := poly[len(poly)-1]
	prevD := dist(prev)
	start := len(dst)
	for _, cur := range poly {
		curD := dist(cur)
		prevIn, curIn := prevD >= -epsilon, curD >= -epsilon
		if prevIn != curIn {
			dst = append(dst, lerpClip(prev, cur, prevD/(prevD-curD)))
		}
		if curIn {
			dst = append(dst, cur)
		}
		prev, prevD = cur, curD
	}
	if len(dst)-start < 3 {
		return dst[:start]
	}
	return dst
}

func crossesNear(poly []ClipVertex, epsilon float64) bool {
	for _, v := range poly {
		if v.Pos.Z+v.Pos.W < -epsilon {
			return true
		}
	}
	return false
}

func lerpClip(a, b ClipVertex, t float64) ClipVertex {
	return ClipVertex{
		Pos:   a.Pos.Lerp(b.Pos, t),
		UV:    a.UV.Lerp(b.UV, t),
		Color: a.Color.Lerp(b.Color, t),
	}
}
