package level

import (
	"cmp"
	"slices"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
)

// Side names a wall of a box room.
type Side int

const (
	SideSouth Side = iota // Minimum Z
	SideNorth             // Maximum Z
	SideWest              // Minimum X
	SideEast              // Maximum X
)

// Door is an opening in a box room wall, leading to another room.
type Door struct {
	Side Side
	// Center is the world coordinate of the door's middle along the wall:
	// X for south and north walls, Z for west and east walls. Two rooms
	// sharing a wall use the same value.
	Center float64
	Width  float64
	Height float64
	To     RoomID
}

// Surfaces chooses the textures of a box room. Tint zero means neutral.
type Surfaces struct {
	Floor, Ceiling, Wall render.TextureHandle
	Tint                 render.Color
}

// TexelScale is how many world units one texture repeat covers on generated
// geometry.
const TexelScale = 2.0

// AddBoxRoom appends an axis-aligned room spanning lo..hi, with every face
// wound to be seen from inside and a portal for each door. The room is
// positioned at lo with room-relative geometry.
func (l *Level) AddBoxRoom(name string, lo, hi math3d.Vec3, s Surfaces, doors ...Door) *Room {
	r := l.AddRoom(name, lo)
	size := hi.Sub(lo)
	tint := s.Tint
	if tint.A == 0 {
		tint = render.ColorNeutral
	}
	b := boxBuilder{room: r, size: size, tint: tint}

	b.floor(s.Floor)
	b.ceiling(s.Ceiling)
	for _, side := range [...]Side{SideSouth, SideNorth, SideWest, SideEast} {
		var openings []Door
		for _, d := range doors {
			if d.Side == side {
				openings = append(openings, d)
			}
		}
		b.wall(side, lo, openings, s.Wall)
	}

	r.RecalculateBounds()
	return r
}

type boxBuilder struct {
	room *Room
	size math3d.Vec3
	tint render.Color
}

// shade darkens the tint towards the floor so Gouraud shading shows.
func (b *boxBuilder) shade(y float64) render.Color {
	t := 0.7
	if b.size.Y > 0 {
		t += 0.3 * y / b.size.Y
	}
	return render.ShadeColor(b.tint, t)
}

func (b *boxBuilder) quad(corners [4]math3d.Vec3, uvs [4]math3d.Vec2, normal math3d.Vec3, tex render.TextureHandle, kind FaceKind) {
	idx := make([]int, 4)
	for i, p := range corners {
		idx[i] = b.room.AddVertex(Vertex{Position: p, UV: uvs[i], Color: b.shade(p.Y), Normal: normal})
	}
	b.room.AddFace(Face{Indices: idx, Texture: tex, Kind: kind})
}

func (b *boxBuilder) floor(tex render.TextureHandle) {
	sx, sz := b.size.X, b.size.Z
	b.quad(
		[4]math3d.Vec3{math3d.V3(0, 0, sz), math3d.V3(sx, 0, sz), math3d.V3(sx, 0, 0), math3d.V3(0, 0, 0)},
		[4]math3d.Vec2{uv(0, sz), uv(sx, sz), uv(sx, 0), uv(0, 0)},
		math3d.V3(0, 1, 0), tex, KindFloor)
}

func (b *boxBuilder) ceiling(tex render.TextureHandle) {
	sx, sy, sz := b.size.X, b.size.Y, b.size.Z
	b.quad(
		[4]math3d.Vec3{math3d.V3(0, sy, 0), math3d.V3(sx, sy, 0), math3d.V3(sx, sy, sz), math3d.V3(0, sy, sz)},
		[4]math3d.Vec2{uv(0, 0), uv(sx, 0), uv(sx, sz), uv(0, sz)},
		math3d.V3(0, -1, 0), tex, KindCeiling)
}

// wallFrame returns the wall's left and right floor corners as seen from
// inside, its inward normal, and the distance along the wall of a world
// coordinate on the wall's axis.
func (b *boxBuilder) wallFrame(side Side, origin math3d.Vec3) (p0, p1, normal math3d.Vec3, along func(float64) float64) {
	sx, sz := b.size.X, b.size.Z
	switch side {
	case SideSouth:
		return math3d.V3(0, 0, 0), math3d.V3(sx, 0, 0), math3d.V3(0, 0, 1),
			func(c float64) float64 { return c - origin.X }
	case SideNorth:
		return math3d.V3(sx, 0, sz), math3d.V3(0, 0, sz), math3d.V3(0, 0, -1),
			func(c float64) float64 { return sx - (c - origin.X) }
	case SideWest:
		return math3d.V3(0, 0, sz), math3d.V3(0, 0, 0), math3d.V3(1, 0, 0),
			func(c float64) float64 { return sz - (c - origin.Z) }
	default:
		return math3d.V3(sx, 0, 0), math3d.V3(sx, 0, sz), math3d.V3(-1, 0, 0),
			func(c float64) float64 { return c - origin.Z }
	}
}

func (b *boxBuilder) wall(side Side, origin math3d.Vec3, doors []Door, tex render.TextureHandle) {
	p0, p1, normal, along := b.wallFrame(side, origin)
	length := p1.Sub(p0).Len()
	dir := p1.Sub(p0).Scale(1 / length)
	h := b.size.Y

	at := func(s, y float64) math3d.Vec3 {
		return p0.Add(dir.Scale(s)).Add(math3d.V3(0, y, 0))
	}
	panel := func(s0, s1, y0, y1 float64) {
		if s1-s0 <= 0 || y1-y0 <= 0 {
			return
		}
		b.quad(
			[4]math3d.Vec3{at(s0, y0), at(s1, y0), at(s1, y1), at(s0, y1)},
			[4]math3d.Vec2{uv(s0, y0), uv(s1, y0), uv(s1, y1), uv(s0, y1)},
			normal, tex, KindWall)
	}

	type span struct {
		s0, s1, top float64
		to          RoomID
	}
	spans := make([]span, 0, len(doors))
	for _, d := range doors {
		c := along(d.Center)
		s0 := max(0, c-d.Width/2)
		s1 := min(length, c+d.Width/2)
		if s1 <= s0 {
			continue
		}
		spans = append(spans, span{s0, s1, min(h, d.Height), d.To})
	}
	slices.SortFunc(spans, func(x, y span) int { return cmp.Compare(x.s0, y.s0) })

	cursor := 0.0
	for _, sp := range spans {
		panel(cursor, sp.s0, 0, h)
		panel(sp.s0, sp.s1, sp.top, h)
		b.room.AddPortal(sp.to, []math3d.Vec3{
			at(sp.s0, 0), at(sp.s1, 0), at(sp.s1, sp.top), at(sp.s0, sp.top),
		}, normal)
		cursor = max(cursor, sp.s1)
	}
	panel(cursor, length, 0, h)
}

func uv(s, t float64) math3d.Vec2 {
	return math3d.V2(s/TexelScale, t/TexelScale)
}
