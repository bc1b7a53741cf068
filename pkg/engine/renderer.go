// Package engine runs the per-frame pipeline: room lookup, portal
// visibility, vertex processing and rasterization into a framebuffer.
package engine

import (
	"cmp"
	"math"
	"slices"

	"github.com/EBonura/bonnie-engine/pkg/level"
	"github.com/EBonura/bonnie-engine/pkg/render"
	"github.com/EBonura/bonnie-engine/pkg/visibility"
	"go.uber.org/zap"
)

// FrameStats summarises the last rendered frame.
type FrameStats struct {
	Room    level.RoomID // Room the frame was rendered from
	Outside bool         // The camera was in no room
	Skipped bool         // Nothing was drawn because the camera was outside

	Rooms        int
	Faces        int
	Portals      int
	DepthLimited int

	Vertex render.VertexStats
	Raster render.RasterStats
}

// Renderer owns a framebuffer and renders levels into it. A Renderer is
// not safe for concurrent use; the framebuffer may be read between frames.
type Renderer struct {
	fb     *render.Framebuffer
	rast   *render.Rasterizer
	logger *zap.Logger
	stats  FrameStats

	items []drawItem
	tris  []render.ScreenTriangle
}

type drawItem struct {
	ref   visibility.FaceRef
	depth float64 // Largest view-space distance of the face
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for traversal diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// WithFramebuffer renders into fb instead of a new 320x240 buffer.
func WithFramebuffer(fb *render.Framebuffer) Option {
	return func(r *Renderer) {
		r.fb = fb
	}
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	if r.fb == nil {
		r.fb = render.NewScreenFramebuffer()
	}
	r.rast = render.NewRasterizer(r.fb)
	return r
}

// Framebuffer returns the render target.
func (r *Renderer) Framebuffer() *render.Framebuffer {
	return r.fb
}

// Stats returns the counters of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// RenderFrame draws lvl as seen by cam under cfg and returns the finished
// framebuffer. The output depends only on the level, the camera pose and
// cfg (plus the previous frame when ClearBuffers is off). cam.Room is
// updated to the room the camera was found in, and cam's aspect ratio to
// the framebuffer's. Render-time problems such as degenerate or
// clipped-away geometry are skipped and counted, never reported as errors.
//
// cfg is expected to pass Config.Validate; out-of-range values are clamped
// by the stages that use them rather than rejected here.
func (r *Renderer) RenderFrame(lvl *level.Level, cam *render.Camera, cfg render.Config) *render.Framebuffer {
	r.stats = FrameStats{Room: level.Exterior}
	r.rast.BeginFrame(cfg)
	if aspect := float64(r.fb.Width) / float64(r.fb.Height); cam.AspectRatio != aspect {
		cam.SetAspectRatio(aspect)
	}

	room, inside := lvl.FindRoom(cam.Position, level.RoomID(cam.Room))
	r.stats.Outside = !inside
	if room == level.Exterior || (!inside && cfg.OutsideRoom == render.OutsideSkip) {
		cam.Room = render.NoRoom
		r.stats.Skipped = true
		return r.fb
	}
	cam.Room = int(room)
	r.stats.Room = room

	vis := visibility.Traverse(lvl, cam, room, visibility.Options{
		MaxDepth: cfg.MaxPortalDepth,
		Logger:   r.logger,
	})
	r.stats.Rooms = len(vis.Rooms)
	r.stats.Faces = len(vis.Faces)
	r.stats.Portals = len(vis.Portals)
	r.stats.DepthLimited = vis.DepthLimited

	proc := render.NewProcessor(r.fb.Width, r.fb.Height, cam.ViewProjectionMatrix(), cfg)
	r.collect(lvl, cam, vis.Faces, !cfg.DepthTest && cfg.PainterSort)

	for _, it := range r.items {
		rm := lvl.Room(it.ref.Room)
		face := &rm.Faces[it.ref.Face]
		proc.SetAmbient(rm.Ambient)
		mat := render.Material{
			Texture: lvl.Textures.Get(face.Texture),
			Blend:   face.Blend,
		}
		for _, tri := range rm.FaceTriangles(it.ref.Face) {
			r.tris, _ = proc.ProcessTriangle(r.tris[:0], tri, face.DoubleSided)
			for _, st := range r.tris {
				r.rast.DrawTriangle(st, mat, cfg)
			}
		}
	}

	if cfg.BackfaceWireframe {
		for _, poly := range proc.Backfaces {
			r.fb.DrawOutline(poly, cfg.WireColor)
		}
	}
	if cfg.ShowPortals || cfg.ShowBounds {
		wf := render.NewWireframe(cam, r.fb)
		if cfg.ShowBounds {
			for _, id := range vis.Rooms {
				wf.DrawAABB(lvl.Room(id).WorldBounds(), cfg.BoundsColor)
			}
		}
		if cfg.ShowPortals {
			for _, p := range vis.Portals {
				wf.DrawPolygon3D(p.Polygon, cfg.PortalColor)
			}
		}
	}

	r.stats.Vertex = proc.Stats
	r.stats.Raster = r.rast.Stats
	return r.fb
}

// collect fills r.items with the visible faces in submission order:
// traversal order, or far to near when sorting. The sort is stable so
// faces at equal depth keep traversal order.
func (r *Renderer) collect(lvl *level.Level, cam *render.Camera, faces []visibility.FaceRef, sortFarToNear bool) {
	r.items = r.items[:0]
	view := cam.ViewMatrix()
	for _, ref := range faces {
		it := drawItem{ref: ref}
		if sortFarToNear {
			rm := lvl.Room(ref.Room)
			it.depth = math.Inf(-1)
			for _, idx := range rm.Faces[ref.Face].Indices {
				// The camera looks down -Z in view space.
				d := -view.MulVec3(rm.Vertices[idx].Position.Add(rm.Position)).Z
				it.depth = max(it.depth, d)
			}
		}
		r.items = append(r.items, it)
	}
	if sortFarToNear {
		slices.SortStableFunc(r.items, func(a, b drawItem) int {
			return cmp.Compare(b.depth, a.depth)
		})
	}
}
