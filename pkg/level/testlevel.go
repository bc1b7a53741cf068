package level

import (
	"math"

	"github.com/EBonura/bonnie-engine/pkg/math3d"
	"github.com/EBonura/bonnie-engine/pkg/render"
)

// Demo door dimensions.
const (
	DoorWidth  = 1.5
	DoorHeight = 2.2
)

// TestLevel builds a small demo world of three rooms joined in a cycle: a
// hall (0), an annex east of it (1) and a gallery north of both (2). Each
// pair of rooms shares a doorway.
func TestLevel() *Level {
	lvl := New("test")

	floor := mustAdd(lvl, "test/floor", must(render.NewCheckerTexture(64, 8, render.RGB(150, 150, 150), render.RGB(90, 90, 100))))
	wall := mustAdd(lvl, "test/wall", must(render.NewBrickTexture(64, render.RGB(170, 90, 70), render.RGB(200, 200, 190))))
	ceiling := mustAdd(lvl, "test/ceiling", must(render.NewCheckerTexture(64, 16, render.RGB(110, 110, 130), render.RGB(80, 80, 100))))

	door := func(side Side, center float64, to RoomID) Door {
		return Door{Side: side, Center: center, Width: DoorWidth, Height: DoorHeight, To: to}
	}
	const h = 3.0

	lvl.AddBoxRoom("hall", math3d.V3(0, 0, 0), math3d.V3(4, h, 4),
		Surfaces{Floor: floor, Ceiling: ceiling, Wall: wall},
		door(SideEast, 2, 1), door(SideNorth, 2, 2))

	lvl.AddBoxRoom("annex", math3d.V3(4, 0, 0), math3d.V3(8, h, 4),
		Surfaces{Floor: floor, Ceiling: ceiling, Wall: wall, Tint: render.RGB(150, 125, 105)},
		door(SideWest, 2, 0), door(SideNorth, 6, 2))

	gallery := lvl.AddBoxRoom("gallery", math3d.V3(0, 0, 4), math3d.V3(8, h, 8),
		Surfaces{Floor: floor, Ceiling: ceiling, Wall: wall, Tint: render.RGB(105, 120, 150)},
		door(SideSouth, 2, 0), door(SideSouth, 6, 1))
	gallery.Ambient = 0.35

	lvl.Spawn = Spawn{
		Position: math3d.V3(1, 1.6, 1),
		Yaw:      -3 * math.Pi / 4, // Facing both doorways
		Room:     0,
	}
	return lvl
}

func must(tex *render.Texture, err error) *render.Texture {
	if err != nil {
		panic(err)
	}
	return tex
}

func mustAdd(lvl *Level, name string, tex *render.Texture) render.TextureHandle {
	h, err := lvl.Textures.Add(name, tex)
	if err != nil {
		panic(err)
	}
	return h
}
