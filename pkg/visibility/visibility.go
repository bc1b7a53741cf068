// Package visibility decides which rooms of a level can be seen from a
// camera by walking the portal graph, narrowing the view frustum through
// every portal it passes.
package visibility

import (
	"github.com/EBonura/bonnie-engine/pkg/level"
	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds portal recursion when Options.MaxDepth is unset.
const DefaultMaxDepth = 32

// planeEpsilon is how far behind a portal plane the eye may be and still
// see through it.
const planeEpsilon = 1e-6

// Options controls a traversal.
type Options struct {
	// MaxDepth is the number of portals a path may pass through. Zero
	// means DefaultMaxDepth.
	MaxDepth int
	// MinArea is the smallest clipped portal area, in square world units,
	// that still lets the traversal through.
	MinArea float64
	Logger  *zap.Logger
}

// FaceRef names one face of one room.
type FaceRef struct {
	Room level.RoomID
	Face int
}

// PortalRef records a portal the traversal went through.
type PortalRef struct {
	From, To level.RoomID
	Portal   int // Index in From's portal list
	Depth    int // Number of portals passed, including this one
	// Polygon is the world-space part of the portal left after clipping.
	Polygon []math3d.Vec3
}

// Result is the output of one traversal.
type Result struct {
	Rooms   []level.RoomID // In visit order; the camera room first
	Faces   []FaceRef
	Portals []PortalRef
	// DepthLimited counts portals skipped because MaxDepth was reached.
	DepthLimited int
}

// Visited reports whether room id is in the result.
func (r *Result) Visited(id level.RoomID) bool {
	for _, v := range r.Rooms {
		if v == id {
			return true
		}
	}
	return false
}

type traversal struct {
	lvl     *level.Level
	eye     math3d.Vec3
	near    float64
	opts    Options
	log     *zap.Logger
	visited []bool
	res     *Result
}

// Traverse walks the portal graph depth first from start, entering each
// room at most once. Portals are followed in their stored order, so equal
// inputs give equal results. Portals whose back faces the eye, that lead
// outside, or that clip away entirely are not followed. Reaching MaxDepth
// stops that branch and logs a warning.
func Traverse(lvl *level.Level, cam *render.Camera, start level.RoomID, opts Options) Result {
	var res Result
	if !lvl.HasRoom(start) {
		return res
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	t := &traversal{
		lvl:     lvl,
		eye:     cam.Position,
		near:    cam.Near,
		opts:    opts,
		log:     log,
		visited: make([]bool, len(lvl.Rooms)),
		res:     &res,
	}
	t.visit(start, cam.Frustum(), 0)
	return res
}

func (t *traversal) visit(id level.RoomID, f render.Frustum, depth int) {
	t.visited[id] = true
	t.res.Rooms = append(t.res.Rooms, id)

	room := t.lvl.Room(id)
	for i := range room.Faces {
		t.res.Faces = append(t.res.Faces, FaceRef{Room: id, Face: i})
	}

	for i := range room.Portals {
		p := &room.Portals[i]
		if p.To == level.Exterior || t.visited[p.To] {
			continue
		}

		poly := room.PortalPolygon(i)
		n := p.Normal.Normalize()
		side := n.Dot(t.eye.Sub(poly[0]))
		if side < -planeEpsilon {
			continue
		}

		// Within the near distance of a portal the near plane would clip
		// it away, so an eye standing in the doorway passes through with
		// the frustum unchanged.
		inDoorway := side <= t.near && insidePolygon(poly, n, t.eye.Sub(n.Scale(side)))
		clipped := poly
		if !inDoorway {
			clipped = f.ClipPolygon(poly)
			if len(clipped) < 3 || render.PolygonArea(clipped) <= t.opts.MinArea {
				continue
			}
		}

		if depth+1 > t.opts.MaxDepth {
			t.res.DepthLimited++
			t.log.Warn("portal depth limit reached",
				zap.Int("room", int(id)),
				zap.Int("portal", i),
				zap.Int("target", int(p.To)),
				zap.Int("max_depth", t.opts.MaxDepth),
			)
			continue
		}

		t.res.Portals = append(t.res.Portals, PortalRef{
			From:    id,
			To:      p.To,
			Portal:  i,
			Depth:   depth + 1,
			Polygon: clipped,
		})

		next := f
		if !inDoorway {
			next = f.Narrow(t.eye, clipped)
		}
		t.visit(p.To, next, depth+1)
	}
}

// insidePolygon reports whether q, lying in the plane of the convex polygon
// poly with normal n, is inside it or on its boundary.
func insidePolygon(poly []math3d.Vec3, n, q math3d.Vec3) bool {
	pos, neg := false, false
	for i, a := range poly {
		b := poly[(i+1)%len(poly)]
		d := n.Dot(b.Sub(a).Cross(q.Sub(a)))
		switch {
		case d > planeEpsilon:
			pos = true
		case d < -planeEpsilon:
			neg = true
		}
	}
	return !(pos && neg)
}
