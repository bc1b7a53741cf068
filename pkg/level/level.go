// Package level holds the static world: rooms built from textured faces,
// portals joining them, and the texture pool the faces refer to.
//
// A Level is assembled and validated once at load time and is read-only
// afterwards; renderers may share it freely.
package level

import (
	"fmt"
	"iter"
	"math"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
)

// RoomID identifies a room by its index in Level.Rooms.
type RoomID int

// Exterior is the portal target for openings onto the outside world. It is
// never entered by traversal.
const Exterior RoomID = -1

// DefaultAmbient is the ambient light of a room that does not set one.
const DefaultAmbient = 0.5

// FaceKind tags a face for editing and debug views.
type FaceKind int

const (
	KindWall FaceKind = iota
	KindFloor
	KindCeiling
)

var kindNames = [...]string{"wall", "floor", "ceiling"}

func (k FaceKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("FaceKind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k FaceKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown face kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FaceKind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if string(text) == name {
			*k = FaceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown face kind %q", text)
}

// Vertex is a room vertex. Positions are relative to the room's Position.
type Vertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2
	Color    render.Color
	Normal   math3d.Vec3 // Zero uses the face normal
}

// Face is a triangle or quad over a room's vertex list, counter-clockwise
// when seen from the side it is visible from.
type Face struct {
	Indices     []int
	Texture     render.TextureHandle
	Room        RoomID // Owning room
	DoubleSided bool
	Kind        FaceKind
	Blend       render.BlendMode
}

// IsTriangle reports whether the face has three corners.
func (f *Face) IsTriangle() bool {
	return len(f.Indices) == 3
}

// Portal is an opening from room From into room To. The polygon is convex
// and room-relative to From; Normal points into From.
type Portal struct {
	From     RoomID
	To       RoomID
	Vertices []math3d.Vec3
	Normal   math3d.Vec3
}

// Room is a convex-ish cell of the level.
type Room struct {
	ID       RoomID
	Name     string
	Position math3d.Vec3 // World offset of all room geometry
	Vertices []Vertex
	Faces    []Face
	Portals  []Portal
	Ambient  float64

	// Bounds is the room-relative box around Vertices, kept current by
	// RecalculateBounds.
	Bounds render.AABB
}

// NewRoom creates an empty room with default lighting.
func NewRoom(id RoomID, name string, pos math3d.Vec3) *Room {
	return &Room{
		ID:       id,
		Name:     name,
		Position: pos,
		Ambient:  DefaultAmbient,
		Bounds:   render.EmptyAABB(),
	}
}

// AddVertex appends a vertex and returns its index.
func (r *Room) AddVertex(v Vertex) int {
	r.Vertices = append(r.Vertices, v)
	return len(r.Vertices) - 1
}

// AddFace appends a face owned by r.
func (r *Room) AddFace(f Face) {
	f.Room = r.ID
	r.Faces = append(r.Faces, f)
}

// AddPortal appends a portal leaving r. A zero normal is derived from the
// polygon, oriented towards the room's centre.
func (r *Room) AddPortal(to RoomID, verts []math3d.Vec3, normal math3d.Vec3) {
	if normal == math3d.Zero3() {
		normal = r.inwardNormal(verts)
	}
	r.Portals = append(r.Portals, Portal{From: r.ID, To: to, Vertices: verts, Normal: normal})
}

func (r *Room) inwardNormal(verts []math3d.Vec3) math3d.Vec3 {
	n := render.PolygonNormal(verts)
	if len(verts) == 0 || r.Bounds.IsEmpty() {
		return n
	}
	var c math3d.Vec3
	for _, v := range verts {
		c = c.Add(v)
	}
	c = c.Scale(1 / float64(len(verts)))
	if n.Dot(r.Bounds.Center().Sub(c)) < 0 {
		n = n.Negate()
	}
	return n
}

// RecalculateBounds refits Bounds to the room's vertices.
func (r *Room) RecalculateBounds() {
	b := render.EmptyAABB()
	for _, v := range r.Vertices {
		b = b.Extend(v.Position)
	}
	r.Bounds = b
}

// WorldBounds returns Bounds offset by the room position.
func (r *Room) WorldBounds() render.AABB {
	if r.Bounds.IsEmpty() {
		return r.Bounds
	}
	return render.NewAABB(r.Bounds.Min.Add(r.Position), r.Bounds.Max.Add(r.Position))
}

// ContainsPoint reports whether a world-space point is inside the room's
// bounds.
func (r *Room) ContainsPoint(p math3d.Vec3) bool {
	return r.WorldBounds().ContainsPoint(p)
}

// PortalPolygon returns portal i in world space.
func (r *Room) PortalPolygon(i int) []math3d.Vec3 {
	src := r.Portals[i].Vertices
	out := make([]math3d.Vec3, len(src))
	for j, v := range src {
		out[j] = v.Add(r.Position)
	}
	return out
}

// Triangles yields each face's triangles as (face index, vertex indices).
// Quads split along the 0-2 diagonal, keeping the face's winding.
func (r *Room) Triangles() iter.Seq2[int, [3]int] {
	return func(yield func(int, [3]int) bool) {
		for i := range r.Faces {
			idx := r.Faces[i].Indices
			if len(idx) < 3 {
				continue
			}
			if !yield(i, [3]int{idx[0], idx[1], idx[2]}) {
				return
			}
			if len(idx) == 4 && !yield(i, [3]int{idx[0], idx[2], idx[3]}) {
				return
			}
		}
	}
}

// FaceTriangles returns the render triangles of face i in world space.
func (r *Room) FaceTriangles(i int) []render.Triangle {
	f := &r.Faces[i]
	tri := func(a, b, c int) render.Triangle {
		return render.Triangle{V: [3]render.Vertex{r.worldVertex(a), r.worldVertex(b), r.worldVertex(c)}}
	}
	switch len(f.Indices) {
	case 3:
		return []render.Triangle{tri(f.Indices[0], f.Indices[1], f.Indices[2])}
	case 4:
		return []render.Triangle{
			tri(f.Indices[0], f.Indices[1], f.Indices[2]),
			tri(f.Indices[0], f.Indices[2], f.Indices[3]),
		}
	}
	return nil
}

func (r *Room) worldVertex(i int) render.Vertex {
	v := r.Vertices[i]
	return render.Vertex{
		Position: v.Position.Add(r.Position),
		Normal:   v.Normal,
		UV:       v.UV,
		Color:    v.Color,
	}
}

// Spawn is the player start.
type Spawn struct {
	Position math3d.Vec3
	Yaw      float64
	Room     RoomID
}

// Level is the complete static world.
type Level struct {
	Name     string
	Rooms    []Room
	Textures *render.TexturePool
	Spawn    Spawn
}

// New creates an empty level with an empty texture pool.
func New(name string) *Level {
	return &Level{Name: name, Textures: render.NewTexturePool(), Spawn: Spawn{Room: Exterior}}
}

// AddRoom appends a room, assigning its ID, and returns a pointer to it.
// The pointer is invalidated by the next AddRoom.
func (l *Level) AddRoom(name string, pos math3d.Vec3) *Room {
	r := NewRoom(RoomID(len(l.Rooms)), name, pos)
	l.Rooms = append(l.Rooms, *r)
	return &l.Rooms[len(l.Rooms)-1]
}

// HasRoom reports whether id names a room of l.
func (l *Level) HasRoom(id RoomID) bool {
	return id >= 0 && int(id) < len(l.Rooms)
}

// Room returns the room with id, or nil.
func (l *Level) Room(id RoomID) *Room {
	if !l.HasRoom(id) {
		return nil
	}
	return &l.Rooms[id]
}

// RecalculateBounds refits every room's bounds.
func (l *Level) RecalculateBounds() {
	for i := range l.Rooms {
		l.Rooms[i].RecalculateBounds()
	}
}

// FindRoom locates the room containing p, trying hint first so a camera on
// a shared boundary stays where it was. When no room contains p it returns
// the room whose bounds are nearest with ok false, or Exterior for a level
// without rooms.
func (l *Level) FindRoom(p math3d.Vec3, hint RoomID) (id RoomID, ok bool) {
	if l.HasRoom(hint) && l.Rooms[hint].ContainsPoint(p) {
		return hint, true
	}
	for i := range l.Rooms {
		if l.Rooms[i].ContainsPoint(p) {
			return RoomID(i), true
		}
	}

	id = Exterior
	best := math.Inf(1)
	for i := range l.Rooms {
		b := l.Rooms[i].WorldBounds()
		if b.IsEmpty() {
			continue
		}
		if d := b.DistanceToPoint(p); d < best {
			best, id = d, RoomID(i)
		}
	}
	return id, false
}

// FaceCount returns the number of faces over all rooms.
func (l *Level) FaceCount() int {
	n := 0
	for i := range l.Rooms {
		n += len(l.Rooms[i].Faces)
	}
	return n
}
